package canvas

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadError records a single canvas that failed to load. Discovery keeps
// going; one broken file must not hide the rest of the directory.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// DiscoverResult holds the canvases found in a directory plus any
// per-file load errors.
type DiscoverResult struct {
	Canvases []*Canvas
	Errors   []LoadError
}

// Discover walks dir for .sql files and loads each one. Results come
// back sorted by Name. Load failures land in Errors, not in the
// returned error; only a broken walk itself is fatal.
func Discover(dir string) (*DiscoverResult, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("canvases directory not accessible: %w", err)
	}

	result := &DiscoverResult{}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr == nil && info.IsDir() && path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if walkErr != nil || info.IsDir() || !strings.HasSuffix(info.Name(), ".sql") {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		c, loadErr := Load(path)
		if loadErr != nil {
			result.Errors = append(result.Errors, LoadError{Path: path, Err: loadErr})
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = info.Name()
		}
		c.Name = canvasName(rel)
		result.Canvases = append(result.Canvases, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan canvases directory: %w", err)
	}

	sort.Slice(result.Canvases, func(i, j int) bool {
		return result.Canvases[i].Name < result.Canvases[j].Name
	})

	return result, nil
}

// Resolve finds one canvas by reference. A reference is tried as a
// direct file path first, then as a name under dir (with or without
// the .sql extension).
func Resolve(dir, ref string) (*Canvas, error) {
	if isSQLFile(ref) {
		c, err := Load(ref)
		if err != nil {
			return nil, err
		}
		c.Name = canvasName(filepath.Base(ref))
		return c, nil
	}

	candidate := filepath.Join(dir, ref)
	if !strings.HasSuffix(candidate, ".sql") {
		candidate += ".sql"
	}
	if isSQLFile(candidate) {
		c, err := Load(candidate)
		if err != nil {
			return nil, err
		}
		c.Name = canvasName(strings.TrimSuffix(ref, ".sql"))
		return c, nil
	}

	return nil, &UnknownCanvasError{Ref: ref, Dir: dir, Available: listNames(dir)}
}

// UnknownCanvasError reports a canvas reference that matched nothing.
type UnknownCanvasError struct {
	Ref       string
	Dir       string
	Available []string
}

func (e *UnknownCanvasError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("canvas %q not found\nNo .sql files under %s\nHint: Check canvases_dir in querycanvas.yaml", e.Ref, e.Dir)
	}
	return fmt.Sprintf("canvas %q not found\nAvailable canvases: %v", e.Ref, e.Available)
}

func isSQLFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && strings.HasSuffix(path, ".sql")
}

func canvasName(rel string) string {
	return filepath.ToSlash(strings.TrimSuffix(rel, ".sql"))
}

func listNames(dir string) []string {
	result, err := Discover(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(result.Canvases))
	for _, c := range result.Canvases {
		names = append(names, c.Name)
	}
	return names
}
