package domain

// DefaultTargets returns the built-in target list used when no configuration
// file exists: an ESM bundle for browser and node, a CommonJS bundle for node,
// and a plain .js ESM bundle for browsers.
func DefaultTargets() []Target {
	return []Target{
		{
			Name:         "esm",
			EntryPoints:  []string{DefaultEntryPoint},
			Format:       FormatESM,
			OutExtension: ExtMJS,
			Declarations: true,
			SourceMap:    true,
			Clean:        true,
			OutDir:       "build/esm",
			Target:       "esnext",
			Platform:     PlatformNeutral,
			Minify:       true,
			OnSuccess: CopyHook{
				From:    DefaultAssetsSource,
				To:      DefaultAssetsDestination,
				Message: "Copied assets to " + DefaultAssetsDestination,
			},
		},
		{
			Name:         "cjs",
			EntryPoints:  []string{DefaultEntryPoint},
			Format:       FormatCommonJS,
			OutExtension: ExtCJS,
			Declarations: true,
			SourceMap:    true,
			OutDir:       "build/cjs",
			Target:       "es2019",
			Platform:     PlatformNode,
			Minify:       true,
		},
		{
			Name:         "js",
			EntryPoints:  []string{DefaultEntryPoint},
			Format:       FormatESM,
			OutExtension: ExtJS,
			Declarations: true,
			SourceMap:    true,
			OutDir:       "build/js",
			Target:       "es2020",
			Platform:     PlatformBrowser,
			Minify:       true,
		},
	}
}
