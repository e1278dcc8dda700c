package scheduler

import "strings"

// Scope selects which command of a member a parameter targets.
type Scope string

const (
	ScopeMain   Scope = ""
	ScopeBefore Scope = "before"
	ScopeAfter  Scope = "after"
)

// ResolveParam returns the parameter for member name (or alias) at scope.
//
// A raw value that does not start with "?" is forwarded as-is to every
// command. "?web=--watch&api.before=seed" targets members by name or alias;
// a ".before" or ".after" suffix targets a hook instead of the main command.
// The name wins over the alias and a repeated key keeps its last value.
// Empty values count as absent. A value keeps any "=" after the first one.
func ResolveParam(raw, name, alias string, scope Scope) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "?") {
		return raw
	}

	values := make(map[string]string)
	for _, part := range strings.Split(raw[1:], "&") {
		key, value, _ := strings.Cut(part, "=")
		if strings.TrimSpace(value) == "" {
			continue
		}
		values[strings.TrimSpace(key)] = value
	}

	for _, target := range []string{name, alias} {
		if target == "" {
			continue
		}
		key := target
		if scope != ScopeMain {
			key += "." + string(scope)
		}
		if v, ok := values[key]; ok {
			return v
		}
	}
	return ""
}
