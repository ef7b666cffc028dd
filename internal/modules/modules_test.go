package modules

import (
	"testing"

	"codeatlas/internal/config"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

func newAggregator(mutate func(*config.ModulesConfig)) *Aggregator {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(&cfg.Modules)
	}
	return New(&cfg.Modules, logging.Discard())
}

func sampleFiles() []model.FileRecord {
	return []model.FileRecord{
		{Path: "api/users.ts", Type: model.FileTypeAPIRoute, Exports: []model.ExportSymbol{
			{Name: "GET", Kind: model.ExportFunction},
		}},
		{Path: "api/posts.ts", Type: model.FileTypeAPIRoute, Exports: []model.ExportSymbol{
			{Name: "GET", Kind: model.ExportFunction},
			{Name: "POST", Kind: model.ExportFunction},
		}},
		{Path: "db/client.ts", Type: model.FileTypeUtility,
			Exports: []model.ExportSymbol{{Name: "client", Kind: model.ExportConstant}},
			ExternalCalls: []model.ExternalCallSite{
				{Service: "supabase", Detail: "createClient(url, key)", Line: 3},
			}},
		{Path: "README.ts", Type: model.FileTypeOther},
	}
}

func TestAggregatePartitionsEveryFileOnce(t *testing.T) {
	files := sampleFiles()
	mods := newAggregator(nil).Aggregate(files)

	seen := make(map[string]string)
	for _, m := range mods {
		for _, f := range m.Files {
			if prev, dup := seen[f]; dup {
				t.Errorf("file %s in both %s and %s", f, prev, m.Name)
			}
			seen[f] = m.Name
		}
	}
	if len(seen) != len(files) {
		t.Errorf("partition covers %d files, expected %d", len(seen), len(files))
	}
	if seen["README.ts"] != "root" {
		t.Errorf("top-level file should land in root module, got %s", seen["README.ts"])
	}
}

func TestAggregateModuleAggregates(t *testing.T) {
	mods := newAggregator(nil).Aggregate(sampleFiles())

	var db *model.Module
	for i := range mods {
		if mods[i].Name == "db" {
			db = &mods[i]
		}
	}
	if db == nil {
		t.Fatal("db module missing")
	}
	if len(db.ExternalServices) != 1 || db.ExternalServices[0] != "supabase" {
		t.Errorf("unexpected services: %v", db.ExternalServices)
	}
	if len(db.Exports) != 1 || db.Exports[0].File != "db/client.ts" {
		t.Errorf("exports missing origin file: %+v", db.Exports)
	}
	if db.FileTypeSummary[model.FileTypeUtility] != 1 {
		t.Errorf("unexpected type summary: %v", db.FileTypeSummary)
	}
}

func TestAggregateKeyExportsBounded(t *testing.T) {
	files := []model.FileRecord{{Path: "lib/big.ts", Type: model.FileTypeUtility}}
	for i := 0; i < 20; i++ {
		files[0].Exports = append(files[0].Exports, model.ExportSymbol{
			Name: string(rune('a' + i)),
			Kind: model.ExportFunction,
		})
	}
	files[0].Exports = append(files[0].Exports, model.ExportSymbol{
		Name: "Props", Kind: model.ExportType,
	})

	mods := newAggregator(func(c *config.ModulesConfig) { c.MaxKeyExports = 5 }).Aggregate(files)
	if len(mods) != 1 {
		t.Fatalf("expected 1 module, got %d", len(mods))
	}
	if len(mods[0].KeyExports) != 5 {
		t.Errorf("keyExports not bounded: %v", mods[0].KeyExports)
	}
	for _, k := range mods[0].KeyExports {
		if k == "Props" {
			t.Error("type export should not be a key export")
		}
	}
}

func TestAggregateConfiguredRoots(t *testing.T) {
	files := []model.FileRecord{
		{Path: "packages/web/app.tsx", Type: model.FileTypePage},
		{Path: "packages/server/main.ts", Type: model.FileTypeOther},
		{Path: "scripts/build.ts", Type: model.FileTypeUtility},
	}

	mods := newAggregator(func(c *config.ModulesConfig) {
		c.Roots = []string{"packages/web", "packages/server"}
	}).Aggregate(files)

	got := make(map[string]int)
	for _, m := range mods {
		got[m.Name] = len(m.Files)
	}
	if got["packages/web"] != 1 || got["packages/server"] != 1 {
		t.Errorf("configured roots not honored: %v", got)
	}
	if got["root"] != 1 {
		t.Errorf("unrooted file should fall into root module: %v", got)
	}
}

func TestInferModuleKind(t *testing.T) {
	cases := []struct {
		name     string
		services []string
		want     model.ModuleKind
	}{
		{"api", nil, model.ModuleKindBackend},
		{"routes", nil, model.ModuleKindBackend},
		{"components", nil, model.ModuleKindFrontend},
		{"pages", nil, model.ModuleKindFrontend},
		{"integrations", nil, model.ModuleKindIntegration},
		{"db", nil, model.ModuleKindData},
		{"lib", nil, model.ModuleKindShared},
		{"utils", nil, model.ModuleKindShared},
		{"agents", []string{"openai"}, model.ModuleKindIntegration},
		{"misc", nil, model.ModuleKindOther},
	}

	for _, c := range cases {
		if got := InferModuleKind(c.name, c.services); got != c.want {
			t.Errorf("InferModuleKind(%s, %v) = %s, want %s", c.name, c.services, got, c.want)
		}
	}
}
