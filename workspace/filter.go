package workspace

// BuildPlatforms returns the platforms that declare the build script for
// mode ("build" or "build-<mode>").
func BuildPlatforms(platforms []*Manifest, mode string) []*Manifest {
	return WithScript(platforms, ScriptKey("build", mode))
}

// StartPlatforms returns the platforms that declare a start script.
func StartPlatforms(platforms []*Manifest) []*Manifest {
	return WithScript(platforms, "start")
}

// WithScript returns the members declaring script key, in input order.
func WithScript(members []*Manifest, key string) []*Manifest {
	var out []*Manifest
	for _, m := range members {
		if m.HasScript(key) {
			out = append(out, m)
		}
	}
	return out
}

// OwnRootPlatforms returns the platforms that install their own dependencies.
func OwnRootPlatforms(platforms []*Manifest) []*Manifest {
	var out []*Manifest
	for _, m := range platforms {
		if m.OwnRoot() {
			out = append(out, m)
		}
	}
	return out
}

// Names returns the member names in input order.
func Names(members []*Manifest) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}

// Find returns the first member called name.
func Find(members []*Manifest, name string) (*Manifest, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}
