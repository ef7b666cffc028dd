// Package resolve turns raw import specifiers into repo-relative file paths
// and collapses the per-statement imports into one directed dependency edge
// per (from, to) file pair. Specifiers that do not land on a scanned file are
// marked external; they never fail a scan.
package resolve

import (
	"path"
	"sort"
	"strings"

	"codeatlas/internal/config"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
)

// candidateExtensions are tried, in order, when a specifier has no extension.
var candidateExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// indexBases are tried, in order, when a specifier names a directory.
var indexBases = []string{"index.ts", "index.tsx", "index.js", "index.jsx"}

// Resolver resolves import specifiers against the set of scanned files.
type Resolver struct {
	cfg    *config.ResolveConfig
	logger *logging.Logger

	// aliases sorted longest-prefix-first so "@app/" wins over "@/".
	aliases []aliasRule
}

type aliasRule struct {
	prefix string
	target string
}

// Result is the outcome of resolving a whole snapshot's imports.
type Result struct {
	// Edges is the collapsed dependency edge list, sorted by (from, to).
	Edges []model.DependencyEdge
	// Unresolved counts import statements that stayed external because their
	// relative or aliased specifier did not land on a scanned file.
	Unresolved int
}

// New creates a Resolver.
func New(cfg *config.ResolveConfig, logger *logging.Logger) *Resolver {
	r := &Resolver{cfg: cfg, logger: logger.Named("resolve")}
	for prefix, target := range cfg.Aliases {
		r.aliases = append(r.aliases, aliasRule{prefix: prefix, target: target})
	}
	sort.Slice(r.aliases, func(i, j int) bool {
		if len(r.aliases[i].prefix) != len(r.aliases[j].prefix) {
			return len(r.aliases[i].prefix) > len(r.aliases[j].prefix)
		}
		return r.aliases[i].prefix < r.aliases[j].prefix
	})
	return r
}

// Resolve marks each file's imports as internal or external and returns the
// collapsed edge list. It mutates the IsExternal flag on the given records.
func (r *Resolver) Resolve(files []model.FileRecord) *Result {
	known := make(map[string]bool, len(files))
	for i := range files {
		known[files[i].Path] = true
	}

	type edgeKey struct{ from, to string }
	edgeIndex := make(map[edgeKey]int)
	var edges []model.DependencyEdge
	unresolved := 0

	for i := range files {
		from := files[i].Path
		for j := range files[i].Imports {
			imp := &files[i].Imports[j]
			target, ok := r.resolveSpecifier(from, imp.Source, known)
			if !ok {
				imp.IsExternal = true
				if r.isPathLike(imp.Source) {
					// A relative or aliased specifier that missed is a real
					// resolution failure, not a package import.
					unresolved++
					r.logger.Debug("unresolved import", logging.Fields{
						"file":   from,
						"source": imp.Source,
					})
				}
				continue
			}
			imp.IsExternal = false

			// Self-imports (a file re-exporting through itself) never
			// produce an edge.
			if target == from {
				continue
			}

			key := edgeKey{from: from, to: target}
			if idx, exists := edgeIndex[key]; exists {
				edges[idx].Imports = unionOrdered(edges[idx].Imports, imp.Names)
				continue
			}
			edgeIndex[key] = len(edges)
			edges = append(edges, model.DependencyEdge{
				From:    from,
				To:      target,
				Imports: unionOrdered(nil, imp.Names),
			})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	return &Result{Edges: edges, Unresolved: unresolved}
}

// resolveSpecifier maps one specifier, as written in fromFile, onto a scanned
// file path. Resolution order: exact path, extension fallback, index-file
// fallback.
func (r *Resolver) resolveSpecifier(fromFile, source string, known map[string]bool) (string, bool) {
	var base string

	switch {
	case strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../"):
		base = path.Join(path.Dir(fromFile), source)
	default:
		aliased, ok := r.applyAlias(source)
		if !ok {
			return "", false
		}
		base = aliased
	}

	base = path.Clean(base)
	if base == "." || strings.HasPrefix(base, "../") {
		return "", false
	}

	if known[base] {
		return base, true
	}
	for _, ext := range candidateExtensions {
		if known[base+ext] {
			return base + ext, true
		}
	}
	for _, idx := range indexBases {
		if p := path.Join(base, idx); known[p] {
			return p, true
		}
	}
	return "", false
}

func (r *Resolver) applyAlias(source string) (string, bool) {
	for _, a := range r.aliases {
		if strings.HasPrefix(source, a.prefix) {
			return a.target + strings.TrimPrefix(source, a.prefix), true
		}
	}
	return "", false
}

// isPathLike reports whether a specifier was meant to point into the tree
// (relative or alias-prefixed), as opposed to naming a package.
func (r *Resolver) isPathLike(source string) bool {
	if strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") {
		return true
	}
	for _, a := range r.aliases {
		if strings.HasPrefix(source, a.prefix) {
			return true
		}
	}
	return false
}

// unionOrdered appends the elements of extra not already present, preserving
// first-seen order.
func unionOrdered(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n] = true
	}
	if existing == nil {
		existing = []string{}
	}
	for _, n := range extra {
		if !seen[n] {
			seen[n] = true
			existing = append(existing, n)
		}
	}
	return existing
}
