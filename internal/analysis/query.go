package analysis

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"codeatlas/internal/config"
	"codeatlas/internal/errors"
	"codeatlas/internal/graph"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

// SearchLimit caps the hits returned by Search. Total still reports the
// full match count.
const SearchLimit = 50

// Engine answers read queries against the store's current snapshot. All
// methods are safe for concurrent use; empty results are values, not errors.
// Before the first scan every read answers as if over an empty snapshot, so
// callers never distinguish "never scanned" from "found nothing".
type Engine struct {
	store    *Store
	composer *graph.Composer
	logger   *logging.Logger

	viewCache *lru.Cache[string, *model.Graph]
}

// NewEngine creates a query engine over store.
func NewEngine(store *Store, cfg *config.GraphConfig, logger *logging.Logger) (*Engine, error) {
	cache, err := lru.New[string, *model.Graph](cfg.ViewCacheSize)
	if err != nil {
		return nil, errors.Wrap(errors.InternalError, "create view cache", err)
	}
	return &Engine{
		store:     store,
		composer:  graph.New(logger),
		logger:    logger.Named("query"),
		viewCache: cache,
	}, nil
}

// snapshot returns the current snapshot, or an empty one before the first
// scan so reads degrade to empty results rather than errors.
func (e *Engine) snapshot() *model.Snapshot {
	if snap := e.store.Current(); snap != nil {
		return snap
	}
	return &model.Snapshot{
		Stats:            model.Stats{FileTypes: map[model.FileType]int{}},
		Files:            []model.FileRecord{},
		DependencyEdges:  []model.DependencyEdge{},
		ApiRoutes:        []model.ApiRouteRecord{},
		Pages:            []model.PageRecord{},
		Modules:          []model.Module{},
		ExternalServices: []model.ServiceUsage{},
	}
}

// GetStats returns the current snapshot's summary statistics.
func (e *Engine) GetStats() (*model.Stats, error) {
	stats := e.snapshot().Stats
	return &stats, nil
}

// ListFiles returns file records, optionally filtered by type and by a
// case-insensitive path substring.
func (e *Engine) ListFiles(fileType, pathQuery string) ([]model.FileRecord, error) {
	if fileType != "" && !validFileType(fileType) {
		return nil, errors.New(errors.InvalidArgument, "unknown file type").
			WithDetails(map[string]string{"type": fileType})
	}

	q := strings.ToLower(pathQuery)
	out := []model.FileRecord{}
	for _, f := range e.snapshot().Files {
		if fileType != "" && string(f.Type) != fileType {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(f.Path), q) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// FileDetail is one file plus its resolved relationships.
type FileDetail struct {
	model.FileRecord
	DependsOn  []model.DependencyEdge `json:"depends_on"`
	ImportedBy []model.DependencyEdge `json:"imported_by"`
	Module     string                 `json:"module,omitempty"`
}

// GetFile returns one file with its incoming and outgoing dependency edges.
// Unlike the list reads, a point lookup of a path the snapshot does not hold
// is a NotFound error.
func (e *Engine) GetFile(path string) (*FileDetail, error) {
	snap := e.snapshot()

	rec := snap.FileByPath(path)
	if rec == nil {
		return nil, errors.New(errors.NotFound, "file not in snapshot").
			WithDetails(map[string]string{"path": path})
	}

	detail := &FileDetail{
		FileRecord: *rec,
		DependsOn:  []model.DependencyEdge{},
		ImportedBy: []model.DependencyEdge{},
	}
	for _, edge := range snap.DependencyEdges {
		switch path {
		case edge.From:
			detail.DependsOn = append(detail.DependsOn, edge)
		case edge.To:
			detail.ImportedBy = append(detail.ImportedBy, edge)
		}
	}
	for _, m := range snap.Modules {
		for _, f := range m.Files {
			if f == path {
				detail.Module = m.Name
			}
		}
	}
	return detail, nil
}

// ListRoutes returns the snapshot's API routes.
func (e *Engine) ListRoutes() ([]model.ApiRouteRecord, error) {
	return e.snapshot().ApiRoutes, nil
}

// ListPages returns the snapshot's pages.
func (e *Engine) ListPages() ([]model.PageRecord, error) {
	return e.snapshot().Pages, nil
}

// ListModules returns the snapshot's modules.
func (e *Engine) ListModules() ([]model.Module, error) {
	return e.snapshot().Modules, nil
}

// GetModule returns one module by name. Missing modules are NotFound, like
// GetFile.
func (e *Engine) GetModule(name string) (*model.Module, error) {
	m := e.snapshot().ModuleByName(name)
	if m == nil {
		return nil, errors.New(errors.NotFound, "module not in snapshot").
			WithDetails(map[string]string{"module": name})
	}
	return m, nil
}

// ListServices returns external-service usage, highest usage first.
func (e *Engine) ListServices() ([]model.ServiceUsage, error) {
	return e.snapshot().ExternalServices, nil
}

// ListEdges returns dependency edges, optionally narrowed to those touching
// one file.
func (e *Engine) ListEdges(file string) ([]model.DependencyEdge, error) {
	snap := e.snapshot()
	if file == "" {
		if snap.DependencyEdges == nil {
			return []model.DependencyEdge{}, nil
		}
		return snap.DependencyEdges, nil
	}
	out := []model.DependencyEdge{}
	for _, edge := range snap.DependencyEdges {
		if edge.From == file || edge.To == file {
			out = append(out, edge)
		}
	}
	return out, nil
}

// ComposeGraph returns the named graph view, cached per snapshot.
func (e *Engine) ComposeGraph(view, moduleFilter string) (*model.Graph, error) {
	snap := e.snapshot()

	key := fmt.Sprintf("%s|%s|%s", snap.ID, view, moduleFilter)
	if g, ok := e.viewCache.Get(key); ok {
		return g, nil
	}

	g := e.composer.Compose(snap, view, moduleFilter)
	e.viewCache.Add(key, g)
	return g, nil
}

// SearchHit is one search result.
type SearchHit struct {
	Kind  string `json:"kind"` // file | route | page
	Path  string `json:"path"`
	Match string `json:"match"`
	File  string `json:"file,omitempty"`
}

// SearchResult is a capped hit list plus the true total match count.
type SearchResult struct {
	Query string      `json:"query"`
	Total int         `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// Search matches q case-insensitively against file paths, export names,
// route paths, and page paths. Files come first, then routes, then pages.
// No matches is an empty result, not an error.
func (e *Engine) Search(q string) (*SearchResult, error) {
	snap := e.snapshot()

	query := strings.ToLower(strings.TrimSpace(q))
	result := &SearchResult{Query: q, Hits: []SearchHit{}}
	if query == "" {
		return result, nil
	}

	hits := []SearchHit{}

	for _, f := range snap.Files {
		if strings.Contains(strings.ToLower(f.Path), query) {
			hits = append(hits, SearchHit{Kind: "file", Path: f.Path, Match: f.Path})
			continue
		}
		for _, exp := range f.Exports {
			if strings.Contains(strings.ToLower(exp.Name), query) {
				hits = append(hits, SearchHit{Kind: "file", Path: f.Path, Match: exp.Name})
				break
			}
		}
	}
	for _, r := range snap.ApiRoutes {
		if strings.Contains(strings.ToLower(r.Path), query) {
			hits = append(hits, SearchHit{Kind: "route", Path: r.Path, Match: r.Path, File: r.File})
		}
	}
	for _, p := range snap.Pages {
		if strings.Contains(strings.ToLower(p.Path), query) {
			hits = append(hits, SearchHit{Kind: "page", Path: p.Path, Match: p.Path, File: p.File})
		}
	}

	result.Total = len(hits)
	if len(hits) > SearchLimit {
		hits = hits[:SearchLimit]
	}
	result.Hits = hits
	return result, nil
}

func validFileType(t string) bool {
	for _, ft := range model.FileTypes {
		if string(ft) == t {
			return true
		}
	}
	return false
}
