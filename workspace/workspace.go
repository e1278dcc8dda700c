package workspace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/logger"
)

const (
	PackagesDir  = "packages"
	PlatformsDir = "plats"
	ManifestFile = "package.json"
)

// Warning is a member that could not be read. The member is left out.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) Error() string { return w.Path + ": " + w.Err.Error() }

// Workspace locates members below a root directory.
type Workspace struct {
	Root         string
	PackagesDir  string
	PlatformsDir string

	log *logger.Logger
}

// Open returns the workspace rooted at root. It does not read anything.
func Open(root string) *Workspace {
	return &Workspace{
		Root:         root,
		PackagesDir:  filepath.Join(root, PackagesDir),
		PlatformsDir: filepath.Join(root, PlatformsDir),
		log:          logger.Get("workspace"),
	}
}

// Snapshot is every manifest of a workspace read in one pass.
type Snapshot struct {
	Root      *Manifest
	Packages  []*Manifest
	Platforms []*Manifest
	Warnings  []Warning
}

// Load reads the root manifest, packages and platforms concurrently.
func (w *Workspace) Load(ctx context.Context) (*Snapshot, error) {
	var (
		snap     Snapshot
		mu       sync.Mutex
		warnings []Warning
	)
	collect := func(ws []Warning) {
		mu.Lock()
		warnings = append(warnings, ws...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		root, err := w.RootManifest()
		snap.Root = root
		return err
	})
	g.Go(func() error {
		pkgs, ws, err := w.Packages(gctx)
		snap.Packages = pkgs
		collect(ws)
		return err
	})
	g.Go(func() error {
		plats, ws, err := w.Platforms(gctx)
		snap.Platforms = plats
		collect(ws)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Path < warnings[j].Path })
	snap.Warnings = warnings
	return &snap, nil
}

// RootManifest reads the workspace package.json. A missing file is
// NOT_FOUND; the root must exist.
func (w *Workspace) RootManifest() (*Manifest, error) {
	path := filepath.Join(w.Root, ManifestFile)
	m, err := readManifest(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFound("root package.json", path)
	}
	if err != nil {
		return nil, errors.ManifestInvalid(path, err)
	}
	m.Dir, m.Kind = w.Root, KindRoot
	return m, nil
}

// Packages reads every manifest under packages/.
func (w *Workspace) Packages(ctx context.Context) ([]*Manifest, []Warning, error) {
	return w.readMembers(ctx, w.PackagesDir, KindPackage)
}

// Platforms reads every manifest under plats/.
func (w *Workspace) Platforms(ctx context.Context) ([]*Manifest, []Warning, error) {
	return w.readMembers(ctx, w.PlatformsDir, KindPlatform)
}

func (w *Workspace) readMembers(ctx context.Context, dir string, kind Kind) ([]*Manifest, []Warning, error) {
	dirs, err := memberDirs(dir)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}

	type slot struct {
		m    *Manifest
		warn *Warning
	}
	slots := make([]slot, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)
	for i, d := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(d, ManifestFile)
			m, err := readManifest(path)
			switch {
			case os.IsNotExist(err):
				return nil
			case err != nil:
				slots[i].warn = &Warning{Path: path, Err: err}
				return nil
			}
			m.Dir, m.Kind = d, kind
			slots[i].m = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, errors.Canceled(err)
	}

	var (
		members  []*Manifest
		warnings []Warning
	)
	for _, s := range slots {
		if s.warn != nil {
			w.log.Warn("skipping member with unreadable manifest",
				logger.Fields("path", s.warn.Path, logger.FieldError, s.warn.Err.Error()))
			warnings = append(warnings, *s.warn)
			continue
		}
		if s.m != nil {
			members = append(members, s.m)
		}
	}
	return members, warnings, nil
}

// memberDirs lists member directories under dir, sorted. @scope
// directories contribute their children instead of themselves.
func memberDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !strings.HasPrefix(e.Name(), "@") {
			out = append(out, path)
			continue
		}
		scoped, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, s := range scoped {
			if s.IsDir() {
				out = append(out, filepath.Join(path, s.Name()))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// readManifest decodes path. An empty or whitespace-only file is an empty
// manifest.
func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if strings.TrimSpace(string(data)) == "" {
		return m, nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
