// Package model defines the data model shared by the analysis pipeline and
// the query engine: per-file structural records, the dependency graph, the
// module aggregation, and the immutable snapshot that wraps them.
package model

import "time"

// FileType is the closed classification taxonomy. Every analyzed file gets
// exactly one of these.
type FileType string

const (
	FileTypePage      FileType = "page"
	FileTypeAPIRoute  FileType = "api_route"
	FileTypeComponent FileType = "component"
	FileTypeHook      FileType = "hook"
	FileTypeUtility   FileType = "utility"
	FileTypeConfig    FileType = "config"
	FileTypeSchema    FileType = "schema"
	FileTypeTest      FileType = "test"
	FileTypeOther     FileType = "other"
)

// FileTypes lists every valid FileType, in display order.
var FileTypes = []FileType{
	FileTypePage, FileTypeAPIRoute, FileTypeComponent, FileTypeHook,
	FileTypeUtility, FileTypeConfig, FileTypeSchema, FileTypeTest,
	FileTypeOther,
}

// ExportKind classifies an exported symbol.
type ExportKind string

const (
	ExportFunction  ExportKind = "function"
	ExportHook      ExportKind = "hook"
	ExportComponent ExportKind = "component"
	ExportClass     ExportKind = "class"
	ExportConstant  ExportKind = "constant"
	ExportType      ExportKind = "type"
)

// ExportSymbol is one exported declaration in a source file.
type ExportSymbol struct {
	Name      string     `json:"name"`
	Kind      ExportKind `json:"kind"`
	Line      int        `json:"line"` // 1-based starting line
	IsDefault bool       `json:"isDefault"`
	Params    string     `json:"params,omitempty"` // rendered parameter list
}

// ImportSpec is one import statement: the raw specifier and the names it binds.
// IsExternal is true when the specifier does not resolve inside the scanned tree.
type ImportSpec struct {
	Source     string   `json:"source"`
	Names      []string `json:"names,omitempty"`
	IsExternal bool     `json:"isExternal"`
}

// ExternalCallSite records a reference to a third-party service.
type ExternalCallSite struct {
	Service string `json:"service"` // canonical lower-case id, e.g. "openai"
	Detail  string `json:"detail"`
	Line    int    `json:"line"`
}

// FileRecord is the structural model of one source file. Path is the unique
// key within a snapshot.
type FileRecord struct {
	Path          string             `json:"path"` // repo-relative
	Name          string             `json:"name"`
	Type          FileType           `json:"type"`
	Lines         int                `json:"lines"`
	Exports       []ExportSymbol     `json:"exports"`
	Imports       []ImportSpec       `json:"imports"`
	ExternalCalls []ExternalCallSite `json:"externalCalls,omitempty"`
	DBOperations  []string           `json:"dbOperations,omitempty"` // set of persistence-operation names
}

// DependencyEdge is a directed, de-duplicated import relationship between two
// in-repo files. Imports is the insertion-ordered union of names imported
// across every statement from From into To.
type DependencyEdge struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Imports []string `json:"imports"`
}

// ModuleExport is an aggregated export with its origin file.
type ModuleExport struct {
	Name string     `json:"name"`
	Kind ExportKind `json:"kind"`
	File string     `json:"file"`
}

// Module is a named, non-overlapping group of files representing one
// architectural unit. Modules partition the snapshot's file set.
type Module struct {
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	Files            []string         `json:"files"`
	Exports          []ModuleExport   `json:"exports"`
	ExternalServices []string         `json:"externalServices"`
	KeyExports       []string         `json:"keyExports"`
	FileTypeSummary  map[FileType]int `json:"fileTypeSummary"`
}

// ModuleKind is the coarse architectural role of a module.
type ModuleKind string

const (
	ModuleKindBackend     ModuleKind = "backend"
	ModuleKindFrontend    ModuleKind = "frontend"
	ModuleKindIntegration ModuleKind = "integration"
	ModuleKindData        ModuleKind = "data"
	ModuleKindShared      ModuleKind = "shared"
	ModuleKindOther       ModuleKind = "other"
)

// ApiRouteRecord describes one HTTP route handler discovered in the tree.
type ApiRouteRecord struct {
	Path     string   `json:"path"`
	Methods  []string `json:"methods"`
	File     string   `json:"file"`
	Handlers []string `json:"handlers"`
}

// PageRecord describes one view/page file.
type PageRecord struct {
	Path       string   `json:"path"`
	File       string   `json:"file"`
	Components []string `json:"components,omitempty"`
}

// ServiceUsage aggregates external-service references across the tree.
type ServiceUsage struct {
	Name       string   `json:"name"`
	UsageCount int      `json:"usage_count"`
	Files      []string `json:"files"`
}

// Stats summarizes a snapshot for the dashboard's overview widgets.
type Stats struct {
	TotalFiles            int              `json:"total_files"`
	TotalLines            int              `json:"total_lines"`
	TotalFunctions        int              `json:"total_functions"`
	TotalComponents       int              `json:"total_components"`
	TotalAPIRoutes        int              `json:"total_api_routes"`
	TotalPages            int              `json:"total_pages"`
	TotalExternalServices int              `json:"total_external_services"`
	FileTypes             map[FileType]int `json:"file_types"`
	FilesSkipped          int              `json:"files_skipped,omitempty"`
	UnresolvedImports     int              `json:"unresolved_imports,omitempty"`
}

// Snapshot is one complete, immutable result of a scan. It is produced
// atomically, never mutated, and wholly replaced by the next scan.
type Snapshot struct {
	ID               string           `json:"id"`
	ScannedAt        time.Time        `json:"scanned_at"`
	Root             string           `json:"root"`
	Stats            Stats            `json:"stats"`
	Files            []FileRecord     `json:"files"`
	DependencyEdges  []DependencyEdge `json:"dependency_edges"`
	ApiRoutes        []ApiRouteRecord `json:"api_routes"`
	Pages            []PageRecord     `json:"pages"`
	Modules          []Module         `json:"modules"`
	ExternalServices []ServiceUsage   `json:"external_services"`
}

// FileByPath returns the FileRecord for path, or nil.
func (s *Snapshot) FileByPath(path string) *FileRecord {
	for i := range s.Files {
		if s.Files[i].Path == path {
			return &s.Files[i]
		}
	}
	return nil
}

// ModuleByName returns the Module named name, or nil.
func (s *Snapshot) ModuleByName(name string) *Module {
	for i := range s.Modules {
		if s.Modules[i].Name == name {
			return &s.Modules[i]
		}
	}
	return nil
}

// Graph is the composed view shape served to the visualization layer.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode types used by the composer.
const (
	NodeTypeModule  = "moduleNode"
	NodeTypeFile    = "fileNode"
	NodeTypeRoute   = "routeNode"
	NodeTypeService = "serviceNode"
)

// GraphNode is one node in a composed view.
type GraphNode struct {
	ID   string                 `json:"id"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// GraphEdge is one edge in a composed view.
type GraphEdge struct {
	ID     string                 `json:"id"`
	Source string                 `json:"source"`
	Target string                 `json:"target"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// EmptyGraph returns a graph with non-nil, empty node and edge lists, so the
// JSON shape stays stable for "no match" responses.
func EmptyGraph() *Graph {
	return &Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
}
