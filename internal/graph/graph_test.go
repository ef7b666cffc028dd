package graph

import (
	"testing"

	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		ID: "snap-1",
		Files: []model.FileRecord{
			{Path: "api/users.ts", Name: "users.ts", Type: model.FileTypeAPIRoute, Lines: 12,
				Exports: []model.ExportSymbol{{Name: "GET", Kind: model.ExportFunction}}},
			{Path: "db/client.ts", Name: "client.ts", Type: model.FileTypeUtility, Lines: 5,
				ExternalCalls: []model.ExternalCallSite{
					{Service: "supabase", Detail: "createClient(url, key)", Line: 3},
				}},
			{Path: "components/UserList.tsx", Name: "UserList.tsx", Type: model.FileTypeComponent, Lines: 30},
		},
		DependencyEdges: []model.DependencyEdge{
			{From: "api/users.ts", To: "db/client.ts", Imports: []string{"client"}},
		},
		ApiRoutes: []model.ApiRouteRecord{
			{Path: "/users", Methods: []string{"GET"}, File: "api/users.ts", Handlers: []string{"GET"}},
		},
		Modules: []model.Module{
			{Name: "api", Files: []string{"api/users.ts"},
				Description:      "Module api: 1 file, mostly api_route.",
				ShortDescription: "api (1 file)",
				Exports: []model.ModuleExport{
					{Name: "GET", Kind: model.ExportFunction, File: "api/users.ts"},
				}},
			{Name: "components", Files: []string{"components/UserList.tsx"}},
			{Name: "db", Files: []string{"db/client.ts"},
				ExternalServices: []string{"supabase"}},
		},
	}
}

func TestComposeModulesView(t *testing.T) {
	g := New(logging.Discard()).Compose(sampleSnapshot(), ViewModules, "")

	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 module nodes, got %d", len(g.Nodes))
	}
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 cross-module edge, got %d", len(g.Edges))
	}

	var api *model.GraphNode
	for i := range g.Nodes {
		if g.Nodes[i].ID == "module:api" {
			api = &g.Nodes[i]
		}
	}
	if api == nil {
		t.Fatal("module:api node missing")
	}
	if api.Data["lines"] != 12 {
		t.Errorf("module node lines = %v, want 12", api.Data["lines"])
	}
	if api.Data["exports"] != 1 {
		t.Errorf("module node exports = %v, want 1", api.Data["exports"])
	}
	if api.Data["description"] != "Module api: 1 file, mostly api_route." {
		t.Errorf("module node description = %v", api.Data["description"])
	}
	if api.Data["shortDescription"] != "api (1 file)" {
		t.Errorf("module node shortDescription = %v", api.Data["shortDescription"])
	}

	e := g.Edges[0]
	if e.Source != "module:api" || e.Target != "module:db" {
		t.Errorf("unexpected edge: %s -> %s", e.Source, e.Target)
	}
	rel, _ := e.Data["relationship"].(string)
	if rel == "" {
		t.Error("cross-module edge must carry a non-empty relationship label")
	}
	if rel != "api reads and writes db" {
		t.Errorf("unexpected relationship label: %q", rel)
	}
}

func TestComposeModulesFallbackLabel(t *testing.T) {
	snap := &model.Snapshot{
		Files: []model.FileRecord{
			{Path: "alpha/a.ts"}, {Path: "beta/b.ts"},
		},
		DependencyEdges: []model.DependencyEdge{
			{From: "alpha/a.ts", To: "beta/b.ts", Imports: []string{"x", "y"}},
		},
		Modules: []model.Module{
			{Name: "alpha", Files: []string{"alpha/a.ts"}},
			{Name: "beta", Files: []string{"beta/b.ts"}},
		},
	}

	g := New(logging.Discard()).Compose(snap, ViewModules, "")
	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(g.Edges))
	}
	if rel := g.Edges[0].Data["relationship"]; rel != "2 imports" {
		t.Errorf("expected count fallback label, got %v", rel)
	}
}

func TestComposeFilesViewWithModuleFilter(t *testing.T) {
	c := New(logging.Discard())
	snap := sampleSnapshot()

	full := c.Compose(snap, ViewFiles, "")
	if len(full.Nodes) != 3 || len(full.Edges) != 1 {
		t.Errorf("full files view wrong: %d nodes, %d edges", len(full.Nodes), len(full.Edges))
	}

	filtered := c.Compose(snap, ViewFiles, "db")
	if len(filtered.Nodes) != 1 || filtered.Nodes[0].ID != "file:db/client.ts" {
		t.Errorf("module filter not applied: %+v", filtered.Nodes)
	}
	if len(filtered.Edges) != 0 {
		t.Errorf("cross-module edge should be excluded, got %v", filtered.Edges)
	}

	missing := c.Compose(snap, ViewFiles, "nope")
	if len(missing.Nodes) != 0 || missing.Nodes == nil {
		t.Errorf("unknown module filter should yield empty non-nil graph: %+v", missing)
	}
}

func TestComposeRoutesView(t *testing.T) {
	g := New(logging.Discard()).Compose(sampleSnapshot(), ViewRoutes, "")

	var route, file, svc bool
	for _, n := range g.Nodes {
		switch n.Type {
		case model.NodeTypeRoute:
			route = true
		case model.NodeTypeFile:
			file = true
		case model.NodeTypeService:
			svc = true
			if n.ID != "svc:supabase" {
				t.Errorf("unexpected service node id: %s", n.ID)
			}
		}
	}
	if !route || !file || !svc {
		t.Errorf("routes view missing node kinds: route=%v file=%v svc=%v", route, file, svc)
	}
	if len(g.Edges) != 2 {
		t.Errorf("expected route->file and file->service edges, got %v", g.Edges)
	}
}

func TestComposeUnknownViewIsEmpty(t *testing.T) {
	g := New(logging.Discard()).Compose(sampleSnapshot(), "bogus", "")
	if g == nil || g.Nodes == nil || g.Edges == nil {
		t.Fatal("unknown view must return non-nil empty graph")
	}
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("unknown view should be empty, got %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}
}

func TestComposeNilSnapshot(t *testing.T) {
	g := New(logging.Discard()).Compose(nil, ViewModules, "")
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Error("nil snapshot should compose to empty graph")
	}
}
