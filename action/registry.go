package action

import (
	"context"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/kbukum/pmnps/process"
)

// Registry reports what the package registry already has.
type Registry interface {
	// PublishedVersion returns the latest published version of name.
	// published is false when the registry does not know name.
	PublishedVersion(ctx context.Context, name string) (version string, published bool, err error)
}

// pmRegistry asks the package manager: `<pm> view <name> version`.
type pmRegistry struct {
	runner process.Runner
	pm     string
	dir    string
}

// NewRegistry returns a Registry that shells out to pm in dir.
func NewRegistry(runner process.Runner, pm, dir string) Registry {
	return &pmRegistry{runner: runner, pm: pm, dir: dir}
}

func (r *pmRegistry) PublishedVersion(ctx context.Context, name string) (string, bool, error) {
	res, err := r.runner.Run(ctx, process.Command{
		Label:  name,
		Binary: r.pm,
		Args:   []string{"view", name, "version"},
		Dir:    r.dir,
	})
	if err != nil {
		if res != nil && strings.Contains(string(res.Stderr), "404") {
			return "", false, nil
		}
		return "", false, err
	}
	version := strings.TrimSpace(string(res.Stdout))
	return version, version != "", nil
}

// NeedsPublish reports whether local should be published over remote.
// Unpublished names always publish; an invalid local version never does.
func NeedsPublish(local, remote string, published bool) bool {
	if !published {
		return true
	}
	lv, rv := canonical(local), canonical(remote)
	if !semver.IsValid(lv) {
		return false
	}
	if !semver.IsValid(rv) {
		return true
	}
	return semver.Compare(lv, rv) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
