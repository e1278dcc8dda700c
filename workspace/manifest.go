package workspace

import (
	"sort"
	"strings"
)

// Kind tells packages and platforms apart.
type Kind string

const (
	KindPackage  Kind = "package"
	KindPlatform Kind = "platform"
	KindRoot     Kind = "root"
)

// Manifest is the part of a member's package.json that pmnps reads.
type Manifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version,omitempty"`
	Private         bool              `json:"private,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Pmnps           *Meta             `json:"pmnps,omitempty"`

	// Dir is the member directory. Kind is derived from where it was found.
	Dir  string `json:"-"`
	Kind Kind   `json:"-"`
}

// Meta is the "pmnps" block of a member manifest.
type Meta struct {
	PlatDependencies []string   `json:"platDependencies,omitempty"`
	OwnRoot          bool       `json:"ownRoot,omitempty"`
	Alias            string     `json:"alias,omitempty"`
	BuildHook        *BuildHook `json:"buildHook,omitempty"`
}

// BuildHook holds shell commands run around a member's build.
type BuildHook struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// ScriptKey returns base, or base-mode when mode is set.
func ScriptKey(base, mode string) string {
	if mode == "" {
		return base
	}
	return base + "-" + mode
}

// HasScript reports whether the manifest declares a non-empty script key.
func (m *Manifest) HasScript(key string) bool {
	return m.Scripts[key] != ""
}

// Alias returns pmnps.alias or "".
func (m *Manifest) Alias() string {
	if m.Pmnps == nil {
		return ""
	}
	return m.Pmnps.Alias
}

// OwnRoot reports whether the member installs its own dependencies.
func (m *Manifest) OwnRoot() bool {
	return m.Pmnps != nil && m.Pmnps.OwnRoot
}

// Hooks returns the before and after build hooks; empty strings when absent.
func (m *Manifest) Hooks() (before, after string) {
	if m.Pmnps == nil || m.Pmnps.BuildHook == nil {
		return "", ""
	}
	return strings.TrimSpace(m.Pmnps.BuildHook.Before), strings.TrimSpace(m.Pmnps.BuildHook.After)
}

// PlatformDependencies returns pmnps.platDependencies in declared order.
func (m *Manifest) PlatformDependencies() []string {
	if m.Pmnps == nil {
		return nil
	}
	return m.Pmnps.PlatDependencies
}

// PackageDependencies returns the sorted union of dependency and
// devDependency names.
func (m *Manifest) PackageDependencies() []string {
	seen := make(map[string]struct{}, len(m.Dependencies)+len(m.DevDependencies))
	for name := range m.Dependencies {
		seen[name] = struct{}{}
	}
	for name := range m.DevDependencies {
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Publishable reports whether the member may be published: it is not
// private and has a name and version.
func (m *Manifest) Publishable() bool {
	return !m.Private && m.Name != "" && m.Version != ""
}

// Scoped reports whether the name has an @scope/ prefix.
func (m *Manifest) Scoped() bool {
	return strings.HasPrefix(m.Name, "@")
}
