// Package extract builds the per-file structural model: exported symbols,
// import statements, external-service call sites, and persistence-operation
// mentions. Extraction is regex-heuristic over raw source text; there is no
// compiler front end, so malformed files degrade to line-count-only metadata
// instead of failing the scan.
package extract

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"codeatlas/internal/config"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

// Export declaration patterns. All are anchored at line starts; nested
// declarations are indented and intentionally ignored.
var (
	reExportFunc  = regexp.MustCompile(`(?m)^export\s+(default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)?\s*\(`)
	reExportClass = regexp.MustCompile(`(?m)^export\s+(default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
	reExportVar   = regexp.MustCompile(`(?m)^export\s+(?:const|let|var)\s+([A-Za-z_$][\w$]*)`)
	reExportType  = regexp.MustCompile(`(?m)^export\s+(?:type|interface|enum)\s+([A-Za-z_$][\w$]*)`)
	reExportIdent = regexp.MustCompile(`(?m)^export\s+default\s+([A-Za-z_$][\w$]*)\s*;?\s*$`)
	reExportList  = regexp.MustCompile(`(?m)^export\s*\{([^}]*)\}\s*;?\s*$`)
)

// Import statement patterns. The named-import group spans newlines so a
// multi-line brace list still parses.
var (
	reImport        = regexp.MustCompile(`(?m)^import\s+(?:([\w$]+)\s*,\s*)?(?:\*\s*as\s+([\w$]+)|\{([^}]*)\}|([\w$]+))\s*from\s*['"]([^'"]+)['"]`)
	reImportBare    = regexp.MustCompile(`(?m)^import\s+['"]([^'"]+)['"]`)
	reExportFrom    = regexp.MustCompile(`(?m)^export\s+(?:\*(?:\s+as\s+[\w$]+)?|\{([^}]*)\})\s+from\s+['"]([^'"]+)['"]`)
	reRequire       = regexp.MustCompile(`(?:const|let|var)\s+(?:\{([^}]*)\}|([\w$]+))\s*=\s*require\(\s*['"]([^'"]+)['"]\s*\)`)
	reDynamicImport = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
)

// Persistence-operation calls in the query-builder style used by the
// supported ORMs and SDK clients.
var reDBOp = regexp.MustCompile(`\.(select|insert|update|delete|upsert|rpc)\s*\(`)

// builtinServices is the fixed registry of recognized external-service
// identifiers, matched case-insensitively on word boundaries.
var builtinServices = []string{
	"openai", "anthropic", "supabase", "github", "vercel", "sentry",
	"aws", "cloudflare", "upstash", "deepgram", "helicone", "stripe",
	"resend", "twilio", "firebase", "redis",
}

// Extractor extracts the structural model from a single file's contents.
type Extractor struct {
	cfg      *config.ScanConfig
	services map[string]*regexp.Regexp
	logger   *logging.Logger
}

// New creates an Extractor. ExtraServices from the config extend the
// built-in registry.
func New(cfg *config.ScanConfig, logger *logging.Logger) *Extractor {
	services := make(map[string]*regexp.Regexp, len(builtinServices)+len(cfg.ExtraServices))
	for _, id := range builtinServices {
		services[id] = servicePattern(id)
	}
	for _, id := range cfg.ExtraServices {
		id = strings.ToLower(strings.TrimSpace(id))
		if id != "" {
			services[id] = servicePattern(id)
		}
	}
	return &Extractor{cfg: cfg, services: services, logger: logger.Named("extract")}
}

func servicePattern(id string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(id) + `\b`)
}

// ExtractFile builds a partial FileRecord (everything except Type) from path
// and contents. Content that is not valid UTF-8, or exceeds the configured
// size cap, degrades to line-count-only metadata.
func (e *Extractor) ExtractFile(path string, content []byte) *model.FileRecord {
	rec := &model.FileRecord{
		Path:    path,
		Name:    filepath.Base(path),
		Exports: []model.ExportSymbol{},
		Imports: []model.ImportSpec{},
		Lines:   countLines(content),
	}

	if len(content) > e.cfg.MaxFileSizeBytes || !utf8.Valid(content) {
		e.logger.Debug("degrading to line-count-only metadata", logging.Fields{
			"file": path,
			"size": len(content),
		})
		return rec
	}

	src := string(content)
	lines := newLineIndex(src)

	rec.Exports = e.extractExports(path, src, lines)
	rec.Imports = extractImports(src)
	rec.ExternalCalls = e.extractServiceCalls(src)
	rec.DBOperations = extractDBOperations(src)

	return rec
}

// extractExports finds top-level export declarations with their kinds and
// 1-based starting lines.
func (e *Extractor) extractExports(path, src string, lines *lineIndex) []model.ExportSymbol {
	exports := []model.ExportSymbol{}
	seen := make(map[string]bool)
	jsxFile := isJSXPath(path)

	add := func(sym model.ExportSymbol) {
		key := sym.Name
		if sym.IsDefault {
			key = "default:" + sym.Name
		}
		if sym.Name == "" || seen[key] {
			return
		}
		seen[key] = true
		exports = append(exports, sym)
	}

	for _, m := range reExportFunc.FindAllStringSubmatchIndex(src, -1) {
		isDefault := m[2] >= 0
		name := submatch(src, m, 2)
		if name == "" {
			name = "default"
		}
		add(model.ExportSymbol{
			Name:      name,
			Kind:      functionKind(name, jsxFile),
			Line:      lines.at(m[0]),
			IsDefault: isDefault,
			Params:    renderParams(src, m[1]-1),
		})
	}

	for _, m := range reExportClass.FindAllStringSubmatchIndex(src, -1) {
		add(model.ExportSymbol{
			Name:      submatch(src, m, 2),
			Kind:      model.ExportClass,
			Line:      lines.at(m[0]),
			IsDefault: m[2] >= 0,
		})
	}

	for _, m := range reExportVar.FindAllStringSubmatchIndex(src, -1) {
		name := submatch(src, m, 1)
		kind := model.ExportConstant
		// A const bound to an arrow function is reported as the callable
		// kind its name implies.
		if isArrowBinding(src, m[1]) {
			kind = functionKind(name, jsxFile)
		}
		add(model.ExportSymbol{
			Name: name,
			Kind: kind,
			Line: lines.at(m[0]),
		})
	}

	for _, m := range reExportType.FindAllStringSubmatchIndex(src, -1) {
		add(model.ExportSymbol{
			Name: submatch(src, m, 1),
			Kind: model.ExportType,
			Line: lines.at(m[0]),
		})
	}

	for _, m := range reExportIdent.FindAllStringSubmatchIndex(src, -1) {
		name := submatch(src, m, 1)
		switch name {
		case "function", "class", "async": // declaration forms matched above
			continue
		}
		add(model.ExportSymbol{
			Name:      name,
			Kind:      functionKind(name, jsxFile),
			IsDefault: true,
			Line:      lines.at(m[0]),
		})
	}

	for _, m := range reExportList.FindAllStringSubmatchIndex(src, -1) {
		for _, name := range splitBindingList(submatch(src, m, 1)) {
			add(model.ExportSymbol{
				Name: name,
				Kind: functionKind(name, jsxFile),
				Line: lines.at(m[0]),
			})
		}
	}

	sort.SliceStable(exports, func(i, j int) bool { return exports[i].Line < exports[j].Line })
	return exports
}

// extractImports finds import statements and the local names they bind.
func extractImports(src string) []model.ImportSpec {
	imports := []model.ImportSpec{}
	seen := make(map[string]int) // source -> index into imports

	add := func(source string, names []string) {
		if source == "" {
			return
		}
		if i, ok := seen[source]; ok {
			imports[i].Names = unionNames(imports[i].Names, names)
			return
		}
		seen[source] = len(imports)
		imports = append(imports, model.ImportSpec{Source: source, Names: names})
	}

	for _, m := range reImport.FindAllStringSubmatch(src, -1) {
		var names []string
		if m[1] != "" { // default binding before a brace list
			names = append(names, m[1])
		}
		if m[2] != "" { // namespace binding
			names = append(names, m[2])
		}
		if m[3] != "" { // named bindings
			names = append(names, splitBindingList(m[3])...)
		}
		if m[4] != "" { // lone default binding
			names = append(names, m[4])
		}
		add(m[5], names)
	}

	for _, m := range reImportBare.FindAllStringSubmatch(src, -1) {
		add(m[1], nil)
	}

	for _, m := range reExportFrom.FindAllStringSubmatch(src, -1) {
		add(m[2], splitBindingList(m[1]))
	}

	for _, m := range reRequire.FindAllStringSubmatch(src, -1) {
		var names []string
		if m[1] != "" {
			names = splitBindingList(m[1])
		} else if m[2] != "" {
			names = []string{m[2]}
		}
		add(m[3], names)
	}

	for _, m := range reDynamicImport.FindAllStringSubmatch(src, -1) {
		add(m[1], nil)
	}

	return imports
}

// extractServiceCalls scans line by line for registry identifiers. One call
// site is recorded per service per line.
func (e *Extractor) extractServiceCalls(src string) []model.ExternalCallSite {
	var calls []model.ExternalCallSite

	ids := make([]string, 0, len(e.services))
	for id := range e.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for lineNum, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		for _, id := range ids {
			if e.services[id].MatchString(line) {
				calls = append(calls, model.ExternalCallSite{
					Service: id,
					Detail:  truncate(trimmed, 120),
					Line:    lineNum + 1,
				})
			}
		}
	}

	return calls
}

// extractDBOperations returns the sorted set of persistence-operation names
// mentioned in src.
func extractDBOperations(src string) []string {
	set := make(map[string]bool)
	for _, m := range reDBOp.FindAllStringSubmatch(src, -1) {
		set[m[1]] = true
	}
	if len(set) == 0 {
		return nil
	}
	ops := make([]string, 0, len(set))
	for op := range set {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// functionKind classifies a callable export by naming convention: useXxx is
// a hook, PascalCase in a JSX file is a component, anything else a function.
func functionKind(name string, jsxFile bool) model.ExportKind {
	if isHookName(name) {
		return model.ExportHook
	}
	if jsxFile && isPascalCase(name) {
		return model.ExportComponent
	}
	return model.ExportFunction
}

func isHookName(name string) bool {
	if !strings.HasPrefix(name, "use") || len(name) < 4 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[3:])
	return unicode.IsUpper(r)
}

func isPascalCase(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func isJSXPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx", ".jsx":
		return true
	}
	return false
}

// isArrowBinding reports whether the declaration starting at the binding
// name is assigned an arrow function on the same statement.
func isArrowBinding(src string, start int) bool {
	end := start + 200
	if end > len(src) {
		end = len(src)
	}
	segment := src[start:end]
	if i := strings.IndexByte(segment, '\n'); i >= 0 {
		segment = segment[:i]
	}
	return strings.Contains(segment, "=>") ||
		strings.Contains(segment, "= function") ||
		strings.Contains(segment, "= async")
}

// renderParams renders the parameter list starting at the opening paren
// position, collapsing whitespace and capping the result.
func renderParams(src string, openParen int) string {
	if openParen < 0 || openParen >= len(src) || src[openParen] != '(' {
		// The match index points at the paren via the regex; scan forward
		// a short distance in case of trailing whitespace.
		i := openParen
		for i < len(src) && i < openParen+40 && src[i] != '(' {
			i++
		}
		if i >= len(src) || src[i] != '(' {
			return ""
		}
		openParen = i
	}

	depth := 0
	limit := openParen + 500
	if limit > len(src) {
		limit = len(src)
	}
	for i := openParen; i < limit; i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				params := src[openParen+1 : i]
				return truncate(strings.Join(strings.Fields(params), " "), 80)
			}
		}
	}
	return ""
}

// splitBindingList parses "a, b as c, type D" into local binding names.
func splitBindingList(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.TrimPrefix(part, "type ")
		// "orig as local" binds local
		if i := strings.Index(part, " as "); i >= 0 {
			part = part[i+4:]
		}
		part = strings.TrimSpace(part)
		if part != "" && part != "default" {
			names = append(names, part)
		}
	}
	return names
}

func unionNames(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n] = true
	}
	for _, n := range extra {
		if !seen[n] {
			seen[n] = true
			existing = append(existing, n)
		}
	}
	return existing
}

func submatch(src string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return src[m[2*group]:m[2*group+1]]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := 1
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	// A trailing newline does not start a new line.
	if content[len(content)-1] == '\n' {
		n--
	}
	return n
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex struct {
	starts []int
}

func newLineIndex(src string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (l *lineIndex) at(offset int) int {
	lo, hi := 0, len(l.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}
