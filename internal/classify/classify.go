// Package classify assigns every analyzed file exactly one type from the
// closed taxonomy. Classification is a pure function of the file's path and
// extracted exports, so re-running it over an unchanged tree is a no-op.
//
// Rules are evaluated in a fixed order and the first match wins: path
// conventions first, then export shape, then filename conventions, then the
// catch-all.
package classify

import (
	"path/filepath"
	"regexp"
	"strings"

	"codeatlas/internal/model"
)

type rule struct {
	name   string
	match  func(f *fileInfo) bool
	result model.FileType
}

type fileInfo struct {
	path     string // repo-relative, slash-separated, lower-cased
	base     string // file name without extension, lower-cased
	origBase string // file name without extension, original case
	exports  []model.ExportSymbol
}

var reTestFile = regexp.MustCompile(`\.(test|spec)\.[a-z]+$`)

// rules is the ordered classification chain: route and page directory
// conventions first, then export shape, then filename conventions, then the
// remaining directory heuristics.
var rules = []rule{
	{"api route path", func(f *fileInfo) bool {
		return pathHasDir(f.path, "api") || pathHasDir(f.path, "routes") ||
			strings.HasSuffix(f.base, ".route") || f.base == "route"
	}, model.FileTypeAPIRoute},

	{"page path", func(f *fileInfo) bool {
		if f.base == "page" || f.base == "layout" {
			return true
		}
		return pathHasDir(f.path, "pages") || pathHasDir(f.path, "views") ||
			pathHasDir(f.path, "screens")
	}, model.FileTypePage},

	{"hook exports", func(f *fileInfo) bool {
		return dominantKind(f.exports) == model.ExportHook || isHookFileName(f.origBase)
	}, model.FileTypeHook},

	{"component exports", func(f *fileInfo) bool {
		return dominantKind(f.exports) == model.ExportComponent
	}, model.FileTypeComponent},

	{"test file", func(f *fileInfo) bool {
		return reTestFile.MatchString(f.path) ||
			pathHasDir(f.path, "__tests__") ||
			pathHasDir(f.path, "tests") ||
			pathHasDir(f.path, "test")
	}, model.FileTypeTest},

	{"config file", func(f *fileInfo) bool {
		return strings.HasSuffix(f.base, ".config") ||
			strings.HasSuffix(f.base, "rc") && isKnownRCFile(f.base) ||
			f.base == "config" || f.base == "settings" || f.base == "constants" ||
			pathHasDir(f.path, "config")
	}, model.FileTypeConfig},

	{"schema file", func(f *fileInfo) bool {
		return f.base == "schema" || strings.HasSuffix(f.base, ".schema") ||
			pathHasDir(f.path, "schemas") || pathHasDir(f.path, "migrations") ||
			pathHasDir(f.path, "models") ||
			strings.HasSuffix(f.base, "model") || strings.HasSuffix(f.base, "schema")
	}, model.FileTypeSchema},

	{"component path", func(f *fileInfo) bool {
		return pathHasDir(f.path, "components")
	}, model.FileTypeComponent},

	{"utility path", func(f *fileInfo) bool {
		return pathHasDir(f.path, "utils") || pathHasDir(f.path, "util") ||
			pathHasDir(f.path, "lib") || pathHasDir(f.path, "helpers") ||
			strings.HasSuffix(f.base, "utils") || strings.HasSuffix(f.base, "helper") ||
			strings.HasSuffix(f.base, "helpers")
	}, model.FileTypeUtility},

	{"function-only exports", func(f *fileInfo) bool {
		if len(f.exports) == 0 {
			return false
		}
		for _, e := range f.exports {
			switch e.Kind {
			case model.ExportFunction, model.ExportConstant, model.ExportType:
			default:
				return false
			}
		}
		return true
	}, model.FileTypeUtility},
}

// Classify returns the taxonomy type for a file given its repo-relative path
// and extracted exports. It never fails; the catch-all type is "other".
func Classify(path string, exports []model.ExportSymbol) model.FileType {
	slashed := filepath.ToSlash(path)
	lower := strings.ToLower(slashed)
	ext := filepath.Ext(lower)
	base := strings.TrimSuffix(filepath.Base(lower), ext)
	origBase := strings.TrimSuffix(filepath.Base(slashed), filepath.Ext(slashed))

	f := &fileInfo{path: lower, base: base, origBase: origBase, exports: exports}
	for _, r := range rules {
		if r.match(f) {
			return r.result
		}
	}
	return model.FileTypeOther
}

// pathHasDir reports whether dir appears as a directory segment of path.
// The final segment is the file name and does not count.
func pathHasDir(path, dir string) bool {
	segs := strings.Split(path, "/")
	for _, seg := range segs[:len(segs)-1] {
		if seg == dir {
			return true
		}
	}
	return false
}

// dominantKind returns the kind shared by the majority of exports, or "" when
// exports are empty or mixed without a majority.
func dominantKind(exports []model.ExportSymbol) model.ExportKind {
	if len(exports) == 0 {
		return ""
	}
	counts := make(map[model.ExportKind]int)
	for _, e := range exports {
		if e.Kind != model.ExportType {
			counts[e.Kind]++
		}
	}
	var best model.ExportKind
	bestN := 0
	total := 0
	for k, n := range counts {
		total += n
		if n > bestN {
			best, bestN = k, n
		}
	}
	if total == 0 || bestN*2 <= total {
		return ""
	}
	return best
}

// isHookFileName matches the useXxx naming convention, case-sensitively, so
// "user" is not mistaken for a hook.
func isHookFileName(base string) bool {
	if !strings.HasPrefix(base, "use") || len(base) < 4 {
		return false
	}
	c := base[3]
	return c >= 'A' && c <= 'Z'
}

func isKnownRCFile(base string) bool {
	switch base {
	case "babelrc", ".babelrc", "eslintrc", ".eslintrc", "prettierrc", ".prettierrc", "npmrc", ".npmrc":
		return true
	}
	return false
}
