package config

// Packfile represents the structure of the pack.yaml configuration file.
type Packfile struct {
	Version string            `yaml:"version"`
	Root    string            `yaml:"root"`
	EnvFile string            `yaml:"envFile"`
	Env     map[string]string `yaml:"env"`
	Targets []*TargetDTO      `yaml:"targets"`
}

// TargetDTO represents one build target in the configuration.
type TargetDTO struct {
	Name         string            `yaml:"name"`
	Entry        []string          `yaml:"entry"`
	Format       string            `yaml:"format"`
	OutExtension string            `yaml:"outExtension"`
	DTS          bool              `yaml:"dts"`
	Sourcemap    bool              `yaml:"sourcemap"`
	Clean        bool              `yaml:"clean"`
	OutDir       string            `yaml:"outDir"`
	Target       string            `yaml:"target"`
	Platform     string            `yaml:"platform"`
	Minify       bool              `yaml:"minify"`
	External     []string          `yaml:"external"`
	Define       map[string]string `yaml:"define"`
	OnSuccess    []string          `yaml:"onSuccess"`
	Copy         *CopyDTO          `yaml:"copy"`
}

// CopyDTO configures a directory copy after a successful build.
type CopyDTO struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Message string `yaml:"message"`
}
