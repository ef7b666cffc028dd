// Package walker enumerates candidate source files under a scan root.
// The result is deterministic (sorted by path) so repeated scans of an
// unchanged tree produce identical snapshots.
package walker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"codeatlas/internal/config"
	"codeatlas/internal/errors"
	"codeatlas/internal/logging"
)

// Result holds the ordered candidate list plus walk diagnostics.
type Result struct {
	// Files are repo-relative paths, sorted.
	Files []string
	// Root is the effective root the paths are relative to. When a
	// subdirectory restriction is given, this is root/subdir.
	Root string
	// Skipped counts entries that could not be read during the walk.
	Skipped int
}

// Walker enumerates and filters files.
type Walker struct {
	cfg    *config.ScanConfig
	logger *logging.Logger
}

// New creates a Walker.
func New(cfg *config.ScanConfig, logger *logging.Logger) *Walker {
	return &Walker{cfg: cfg, logger: logger.Named("walker")}
}

// Walk enumerates source files under root, optionally restricted to subdir.
// A missing or unreadable root is fatal (ScanTargetNotFound); unreadable
// individual entries are skipped and counted.
func (w *Walker) Walk(root, subdir string) (*Result, error) {
	effective := root
	if subdir != "" {
		effective = filepath.Join(root, subdir)
	}

	info, err := os.Stat(effective)
	if err != nil || !info.IsDir() {
		return nil, errors.Wrap(errors.ScanTargetNotFound,
			"scan root does not exist or is not a directory", err).
			WithDetails(map[string]string{"root": effective})
	}

	ignoreDirs := make(map[string]bool, len(w.cfg.IgnoreDirs))
	for _, d := range w.cfg.IgnoreDirs {
		ignoreDirs[d] = true
	}
	extensions := make(map[string]bool, len(w.cfg.Extensions))
	for _, e := range w.cfg.Extensions {
		extensions[strings.ToLower(e)] = true
	}

	var gi *ignore.GitIgnore
	if w.cfg.UseGitignore {
		gi = loadGitignore(effective)
	}

	result := &Result{Root: effective}

	walkErr := filepath.WalkDir(effective, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Skipped++
			return nil //nolint:nilerr // unreadable entries are skipped, not fatal
		}

		name := d.Name()

		if d.IsDir() {
			if path == effective {
				return nil
			}
			if ignoreDirs[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are not followed; a cycle through one would make the
		// walk order unstable.
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		if !extensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}

		rel, relErr := filepath.Rel(effective, path)
		if relErr != nil {
			result.Skipped++
			return nil //nolint:nilerr // skip paths we cannot relativize
		}

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		result.Files = append(result.Files, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrap(errors.InternalError, "walk failed", walkErr)
	}

	sort.Strings(result.Files)

	w.logger.Debug("walk completed", logging.Fields{
		"root":    effective,
		"files":   len(result.Files),
		"skipped": result.Skipped,
	})

	return result, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
