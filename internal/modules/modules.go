// Package modules partitions the scanned file set into named architectural
// units and aggregates per-file facts up to the module level. The partition
// is total and non-overlapping: every file belongs to exactly one module.
package modules

import (
	"fmt"
	"sort"
	"strings"

	"codeatlas/internal/config"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

// rootModuleName groups files that live directly at the scan root.
const rootModuleName = "root"

// Aggregator builds the module partition and its aggregates.
type Aggregator struct {
	cfg    *config.ModulesConfig
	logger *logging.Logger
}

// New creates an Aggregator.
func New(cfg *config.ModulesConfig, logger *logging.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, logger: logger.Named("modules")}
}

// Aggregate partitions files into modules and computes each module's
// aggregates. Modules are returned sorted by name.
func (a *Aggregator) Aggregate(files []model.FileRecord) []model.Module {
	byModule := make(map[string][]*model.FileRecord)
	for i := range files {
		name := a.moduleFor(files[i].Path)
		byModule[name] = append(byModule[name], &files[i])
	}

	names := make([]string, 0, len(byModule))
	for name := range byModule {
		names = append(names, name)
	}
	sort.Strings(names)

	mods := make([]model.Module, 0, len(names))
	for _, name := range names {
		mods = append(mods, a.buildModule(name, byModule[name]))
	}
	return mods
}

// moduleFor maps a repo-relative path to its module name. With configured
// roots, a file under a root belongs to it and everything else falls into
// "root"; otherwise the first path segment is the module, and top-level
// files group under "root".
func (a *Aggregator) moduleFor(path string) string {
	if len(a.cfg.Roots) > 0 {
		for _, root := range a.cfg.Roots {
			if path == root || strings.HasPrefix(path, root+"/") {
				return root
			}
		}
		return rootModuleName
	}

	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return rootModuleName
}

func (a *Aggregator) buildModule(name string, files []*model.FileRecord) model.Module {
	mod := model.Module{
		Name:            name,
		Files:           make([]string, 0, len(files)),
		Exports:         []model.ModuleExport{},
		KeyExports:      []string{},
		FileTypeSummary: make(map[model.FileType]int),
	}

	serviceSet := make(map[string]bool)

	for _, f := range files {
		mod.Files = append(mod.Files, f.Path)
		mod.FileTypeSummary[f.Type]++
		for _, e := range f.Exports {
			mod.Exports = append(mod.Exports, model.ModuleExport{
				Name: e.Name,
				Kind: e.Kind,
				File: f.Path,
			})
		}
		for _, c := range f.ExternalCalls {
			serviceSet[c.Service] = true
		}
	}

	sort.Strings(mod.Files)
	sort.SliceStable(mod.Exports, func(i, j int) bool {
		if mod.Exports[i].File != mod.Exports[j].File {
			return mod.Exports[i].File < mod.Exports[j].File
		}
		return mod.Exports[i].Name < mod.Exports[j].Name
	})

	mod.ExternalServices = sortedKeys(serviceSet)
	mod.KeyExports = keyExports(mod.Exports, a.cfg.MaxKeyExports)

	kind := InferModuleKind(name, mod.ExternalServices)
	mod.Description = describeModule(name, kind, len(mod.Files), mod.FileTypeSummary)
	mod.ShortDescription = string(kind)

	return mod
}

// keyExports picks up to max representative exports: callable and value
// exports first, types never.
func keyExports(exports []model.ModuleExport, max int) []string {
	key := []string{}
	seen := make(map[string]bool)
	for _, e := range exports {
		if e.Kind == model.ExportType {
			continue
		}
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		key = append(key, e.Name)
		if len(key) == max {
			break
		}
	}
	return key
}

// InferModuleKind maps a module name, plus whether it touches external
// services, to a coarse architectural role. Name conventions win over the
// service signal.
func InferModuleKind(name string, externalServices []string) model.ModuleKind {
	lower := strings.ToLower(name)

	for _, kw := range []string{"route", "api", "server", "backend", "handler"} {
		if strings.Contains(lower, kw) {
			return model.ModuleKindBackend
		}
	}
	for _, kw := range []string{"view", "component", "page", "ui", "frontend", "screen"} {
		if strings.Contains(lower, kw) {
			return model.ModuleKindFrontend
		}
	}
	for _, kw := range []string{"integration", "plugin", "connector", "webhook"} {
		if strings.Contains(lower, kw) {
			return model.ModuleKindIntegration
		}
	}
	for _, kw := range []string{"data", "store", "schema", "db", "database", "model"} {
		if strings.Contains(lower, kw) {
			return model.ModuleKindData
		}
	}
	for _, kw := range []string{"util", "lib", "shared", "common", "helper"} {
		if strings.Contains(lower, kw) {
			return model.ModuleKindShared
		}
	}
	if len(externalServices) > 0 {
		return model.ModuleKindIntegration
	}
	return model.ModuleKindOther
}

func describeModule(name string, kind model.ModuleKind, fileCount int, summary map[model.FileType]int) string {
	dominant := dominantType(summary)
	if dominant != "" {
		return fmt.Sprintf("%s module %q: %d files, mostly %s", kind, name, fileCount, dominant)
	}
	return fmt.Sprintf("%s module %q: %d files", kind, name, fileCount)
}

func dominantType(summary map[model.FileType]int) model.FileType {
	var best model.FileType
	bestN := 0
	total := 0
	// Iterate the fixed order so ties break deterministically.
	for _, t := range model.FileTypes {
		n := summary[t]
		total += n
		if n > bestN {
			best, bestN = t, n
		}
	}
	if total == 0 || bestN*2 <= total {
		return ""
	}
	return best
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
