// Package graph composes the snapshot into the node/edge views consumed by
// the visualization layer: a module-level overview, a file-level drill-down,
// and a route-centric view with external-service endpoints.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"codeatlas/internal/logging"
	"codeatlas/internal/model"
	"codeatlas/internal/modules"
)

// View names accepted by Compose.
const (
	ViewModules = "modules"
	ViewFiles   = "files"
	ViewRoutes  = "routes"
)

// Composer builds graph views from a snapshot.
type Composer struct {
	logger *logging.Logger
}

// New creates a Composer.
func New(logger *logging.Logger) *Composer {
	return &Composer{logger: logger.Named("graph")}
}

// Compose builds the named view. moduleFilter narrows the files view to one
// module; it is ignored by the other views. An unknown view name or a filter
// that matches nothing yields an empty graph, never an error.
func (c *Composer) Compose(snap *model.Snapshot, view, moduleFilter string) *model.Graph {
	if snap == nil {
		return model.EmptyGraph()
	}
	switch view {
	case ViewModules:
		return c.composeModules(snap)
	case ViewFiles:
		return c.composeFiles(snap, moduleFilter)
	case ViewRoutes:
		return c.composeRoutes(snap)
	default:
		c.logger.Debug("unknown graph view requested", logging.Fields{"view": view})
		return model.EmptyGraph()
	}
}

// composeModules renders one node per module and one edge per ordered module
// pair with at least one cross-module file dependency. Intra-module edges are
// omitted.
func (c *Composer) composeModules(snap *model.Snapshot) *model.Graph {
	g := model.EmptyGraph()

	moduleOf := make(map[string]string, len(snap.Files))
	for _, m := range snap.Modules {
		for _, f := range m.Files {
			moduleOf[f] = m.Name
		}
	}

	linesOf := make(map[string]int, len(snap.Files))
	for _, f := range snap.Files {
		linesOf[f.Path] = f.Lines
	}

	for _, m := range snap.Modules {
		lines := 0
		for _, f := range m.Files {
			lines += linesOf[f]
		}
		g.Nodes = append(g.Nodes, model.GraphNode{
			ID:   "module:" + m.Name,
			Type: model.NodeTypeModule,
			Data: map[string]interface{}{
				"name":             m.Name,
				"kind":             string(modules.InferModuleKind(m.Name, m.ExternalServices)),
				"fileCount":        len(m.Files),
				"lines":            lines,
				"exports":          len(m.Exports),
				"description":      m.Description,
				"shortDescription": m.ShortDescription,
				"externalServices": m.ExternalServices,
				"keyExports":       m.KeyExports,
			},
		})
	}

	type pair struct{ src, dst string }
	accumulated := make(map[pair][]string)
	for _, e := range snap.DependencyEdges {
		src, dst := moduleOf[e.From], moduleOf[e.To]
		if src == "" || dst == "" || src == dst {
			continue
		}
		p := pair{src: src, dst: dst}
		accumulated[p] = unionOrdered(accumulated[p], e.Imports)
	}

	pairs := make([]pair, 0, len(accumulated))
	for p := range accumulated {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].src != pairs[j].src {
			return pairs[i].src < pairs[j].src
		}
		return pairs[i].dst < pairs[j].dst
	})

	for _, p := range pairs {
		imports := accumulated[p]
		g.Edges = append(g.Edges, model.GraphEdge{
			ID:     fmt.Sprintf("module:%s->module:%s", p.src, p.dst),
			Source: "module:" + p.src,
			Target: "module:" + p.dst,
			Data: map[string]interface{}{
				"relationship": relationshipLabel(snap, p.src, p.dst, imports),
				"imports":      imports,
			},
		})
	}

	return g
}

// relationshipLabel synthesizes a short human label for a cross-module edge
// from the two modules' kinds. It always returns a non-empty string; the
// fallback states the import count.
func relationshipLabel(snap *model.Snapshot, src, dst string, imports []string) string {
	srcKind := moduleKind(snap, src)
	dstKind := moduleKind(snap, dst)

	switch {
	case srcKind == model.ModuleKindBackend && dstKind == model.ModuleKindData:
		return fmt.Sprintf("%s reads and writes %s", src, dst)
	case srcKind == model.ModuleKindFrontend && dstKind == model.ModuleKindBackend:
		return fmt.Sprintf("%s calls %s", src, dst)
	case srcKind == model.ModuleKindFrontend && dstKind == model.ModuleKindData:
		return fmt.Sprintf("%s displays data from %s", src, dst)
	case dstKind == model.ModuleKindShared:
		return fmt.Sprintf("%s uses shared code from %s", src, dst)
	case dstKind == model.ModuleKindIntegration:
		return fmt.Sprintf("%s talks to external services via %s", src, dst)
	}

	n := len(imports)
	if n == 1 {
		return "1 import"
	}
	return fmt.Sprintf("%d imports", n)
}

func moduleKind(snap *model.Snapshot, name string) model.ModuleKind {
	m := snap.ModuleByName(name)
	if m == nil {
		return model.ModuleKindOther
	}
	return modules.InferModuleKind(m.Name, m.ExternalServices)
}

// composeFiles renders one node per file and one edge per dependency edge,
// optionally narrowed to files of a single module.
func (c *Composer) composeFiles(snap *model.Snapshot, moduleFilter string) *model.Graph {
	g := model.EmptyGraph()

	include := func(string) bool { return true }
	if moduleFilter != "" {
		m := snap.ModuleByName(moduleFilter)
		if m == nil {
			return g
		}
		member := make(map[string]bool, len(m.Files))
		for _, f := range m.Files {
			member[f] = true
		}
		include = func(path string) bool { return member[path] }
	}

	for _, f := range snap.Files {
		if !include(f.Path) {
			continue
		}
		g.Nodes = append(g.Nodes, model.GraphNode{
			ID:   "file:" + f.Path,
			Type: model.NodeTypeFile,
			Data: map[string]interface{}{
				"path":    f.Path,
				"name":    f.Name,
				"type":    string(f.Type),
				"lines":   f.Lines,
				"exports": len(f.Exports),
			},
		})
	}

	for _, e := range snap.DependencyEdges {
		if !include(e.From) || !include(e.To) {
			continue
		}
		g.Edges = append(g.Edges, model.GraphEdge{
			ID:     fmt.Sprintf("file:%s->file:%s", e.From, e.To),
			Source: "file:" + e.From,
			Target: "file:" + e.To,
			Data: map[string]interface{}{
				"imports": e.Imports,
			},
		})
	}

	return g
}

// composeRoutes renders route nodes wired to their handler files, and
// service nodes for every external service those files touch. Service nodes
// are de-duplicated across routes.
func (c *Composer) composeRoutes(snap *model.Snapshot) *model.Graph {
	g := model.EmptyGraph()

	fileNodes := make(map[string]bool)
	serviceNodes := make(map[string]bool)

	for _, r := range snap.ApiRoutes {
		routeID := "route:" + strings.Join(r.Methods, ",") + " " + r.Path
		g.Nodes = append(g.Nodes, model.GraphNode{
			ID:   routeID,
			Type: model.NodeTypeRoute,
			Data: map[string]interface{}{
				"path":     r.Path,
				"methods":  r.Methods,
				"handlers": r.Handlers,
			},
		})

		f := snap.FileByPath(r.File)
		if f == nil {
			continue
		}

		fileID := "file:" + f.Path
		if !fileNodes[fileID] {
			fileNodes[fileID] = true
			g.Nodes = append(g.Nodes, model.GraphNode{
				ID:   fileID,
				Type: model.NodeTypeFile,
				Data: map[string]interface{}{
					"path": f.Path,
					"type": string(f.Type),
				},
			})
		}
		g.Edges = append(g.Edges, model.GraphEdge{
			ID:     routeID + "->" + fileID,
			Source: routeID,
			Target: fileID,
		})

		for _, svc := range routeServices(snap, f) {
			svcID := "svc:" + svc
			if !serviceNodes[svcID] {
				serviceNodes[svcID] = true
				g.Nodes = append(g.Nodes, model.GraphNode{
					ID:   svcID,
					Type: model.NodeTypeService,
					Data: map[string]interface{}{"name": svc},
				})
			}
			edgeID := fileID + "->" + svcID
			if !hasEdge(g, edgeID) {
				g.Edges = append(g.Edges, model.GraphEdge{
					ID:     edgeID,
					Source: fileID,
					Target: svcID,
				})
			}
		}
	}

	return g
}

// routeServices returns the sorted services a route's handler file touches,
// directly or through its first-hop dependencies.
func routeServices(snap *model.Snapshot, f *model.FileRecord) []string {
	set := make(map[string]bool)
	for _, c := range f.ExternalCalls {
		set[c.Service] = true
	}
	for _, e := range snap.DependencyEdges {
		if e.From != f.Path {
			continue
		}
		if dep := snap.FileByPath(e.To); dep != nil {
			for _, c := range dep.ExternalCalls {
				set[c.Service] = true
			}
		}
	}
	svcs := make([]string, 0, len(set))
	for s := range set {
		svcs = append(svcs, s)
	}
	sort.Strings(svcs)
	return svcs
}

func hasEdge(g *model.Graph, id string) bool {
	for _, e := range g.Edges {
		if e.ID == id {
			return true
		}
	}
	return false
}

func unionOrdered(existing, extra []string) []string {
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
