package classify

import (
	"testing"

	"codeatlas/internal/model"
)

func TestClassifyPathConventions(t *testing.T) {
	cases := []struct {
		path string
		want model.FileType
	}{
		{"api/users.ts", model.FileTypeAPIRoute},
		{"app/api/users/route.ts", model.FileTypeAPIRoute},
		{"src/routes/auth.ts", model.FileTypeAPIRoute},
		// Route and page directories outrank filename conventions.
		{"api/schema.ts", model.FileTypeAPIRoute},
		{"api/users.test.ts", model.FileTypeAPIRoute},
		{"pages/config.ts", model.FileTypePage},
		{"pages/index.tsx", model.FileTypePage},
		{"app/dashboard/page.tsx", model.FileTypePage},
		{"src/views/Home.tsx", model.FileTypePage},
		{"components/Button.tsx", model.FileTypeComponent},
		{"src/lib/format.ts", model.FileTypeUtility},
		{"src/utils/date.ts", model.FileTypeUtility},
		{"db/schema.ts", model.FileTypeSchema},
		{"prisma/migrations/init.ts", model.FileTypeSchema},
		{"next.config.js", model.FileTypeConfig},
		{"src/config/env.ts", model.FileTypeConfig},
		{"src/app.test.ts", model.FileTypeTest},
		{"__tests__/helpers.ts", model.FileTypeTest},
		{"src/components/Button.spec.tsx", model.FileTypeTest},
		{"main.ts", model.FileTypeOther},
	}

	for _, c := range cases {
		if got := Classify(c.path, nil); got != c.want {
			t.Errorf("Classify(%s) = %s, want %s", c.path, got, c.want)
		}
	}
}

func TestClassifyExportShape(t *testing.T) {
	hooks := []model.ExportSymbol{
		{Name: "useUsers", Kind: model.ExportHook},
		{Name: "useUser", Kind: model.ExportHook},
	}
	if got := Classify("src/state/useUsers.ts", hooks); got != model.FileTypeHook {
		t.Errorf("hook-dominant file classified as %s", got)
	}

	comps := []model.ExportSymbol{
		{Name: "Card", Kind: model.ExportComponent},
	}
	if got := Classify("src/ui/Card.tsx", comps); got != model.FileTypeComponent {
		t.Errorf("component-dominant file classified as %s", got)
	}

	fns := []model.ExportSymbol{
		{Name: "formatDate", Kind: model.ExportFunction},
		{Name: "DATE_FORMAT", Kind: model.ExportConstant},
	}
	if got := Classify("src/misc/dates.ts", fns); got != model.FileTypeUtility {
		t.Errorf("function-only file classified as %s", got)
	}
}

func TestClassifyPathBeatsExportShape(t *testing.T) {
	// A component-shaped export inside an api directory is still a route.
	exports := []model.ExportSymbol{{Name: "Widget", Kind: model.ExportComponent}}
	if got := Classify("api/widget.tsx", exports); got != model.FileTypeAPIRoute {
		t.Errorf("expected path convention to win, got %s", got)
	}
}

func TestClassifyIsPure(t *testing.T) {
	exports := []model.ExportSymbol{{Name: "useThing", Kind: model.ExportHook}}
	first := Classify("src/state/useThing.ts", exports)
	for i := 0; i < 5; i++ {
		if got := Classify("src/state/useThing.ts", exports); got != first {
			t.Fatalf("classification changed between calls: %s vs %s", first, got)
		}
	}
}

func TestClassifyCatchAll(t *testing.T) {
	exports := []model.ExportSymbol{{Name: "Thing", Kind: model.ExportClass}}
	if got := Classify("src/core/thing.ts", exports); got != model.FileTypeOther {
		t.Errorf("expected other for mixed class export, got %s", got)
	}
}
