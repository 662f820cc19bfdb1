package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"maps"
	"regexp"
	"slices"

	"github.com/joho/godotenv"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/zerr"
)

const envDefinePrefix = "process.env."

// envKeyRegex matches keys usable as process.env.KEY defines.
var envKeyRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// loadEnv reads the dotenv file at path, if any, and overlays the values
// declared in the configuration. A missing file is not an error. Keys that
// are not JavaScript identifiers are dropped with a warning.
func (l *Loader) loadEnv(path string, declared map[string]string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrEnvFileReadFailed.Error()), "path", path)
		}
		env = make(map[string]string, len(declared))
	}

	for k, v := range declared {
		env[k] = v
	}

	for _, k := range slices.Sorted(maps.Keys(env)) {
		if !envKeyRegex.MatchString(k) {
			l.Logger.Warn("ignoring environment variable " + k + ": not a valid identifier")
			delete(env, k)
		}
	}
	return env, nil
}

// mergeDefines turns env into process.env.KEY defines and lays the target's
// own defines over them. The result is nil when both are empty.
func mergeDefines(env, defines map[string]string) map[string]string {
	if len(env) == 0 && len(defines) == 0 {
		return nil
	}

	out := make(map[string]string, len(env)+len(defines))
	for k, v := range env {
		out[envDefinePrefix+k] = quote(v)
	}
	for k, v := range defines {
		out[k] = v
	}
	return out
}

// quote renders s as a JSON string literal, the form define replacements expect.
func quote(s string) string {
	b, _ := json.Marshal(s) //nolint:errchkjson // marshalling a string cannot fail
	return string(b)
}
