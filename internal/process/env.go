package process

import (
	"os"
	"sort"
	"strings"
)

// DefaultTerm is advertised to child programs unless overridden.
const DefaultTerm = "xterm-256color"

// EnvBuilder assembles the environment handed to a pty child.
type EnvBuilder struct {
	base []string
	term string
}

// NewEnvBuilder starts from base, or the current process environment when
// base is nil.
func NewEnvBuilder(base []string, term string) *EnvBuilder {
	if base == nil {
		base = os.Environ()
	}
	if term == "" {
		term = DefaultTerm
	}
	return &EnvBuilder{base: base, term: term}
}

// Build returns base + terminal variables + extra, where later entries win.
// LINES and COLUMNS are dropped so children query the pty size via ioctl.
func (b *EnvBuilder) Build(extra []string) []string {
	merged := b.Map(extra)
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

// Map is Build in map form.
func (b *EnvBuilder) Map(extra []string) map[string]string {
	envMap := make(map[string]string, len(b.base)+len(extra)+2)
	for _, kv := range b.base {
		if k, v, ok := splitEnv(kv); ok {
			envMap[k] = v
		}
	}
	delete(envMap, "LINES")
	delete(envMap, "COLUMNS")
	envMap["TERM"] = b.term
	if _, ok := envMap["COLORTERM"]; !ok {
		envMap["COLORTERM"] = "truecolor"
	}
	for _, kv := range extra {
		if k, v, ok := splitEnv(kv); ok {
			envMap[k] = v
		}
	}
	return envMap
}

func splitEnv(kv string) (string, string, bool) {
	k, v, ok := strings.Cut(kv, "=")
	if !ok || k == "" {
		return "", "", false
	}
	return k, v, true
}
