package analysis

import (
	"regexp"
	"sort"
	"strings"

	"codeatlas/internal/model"
)

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

var reDynamicSegment = regexp.MustCompile(`\[\.{0,3}([^\]]+)\]`)

// deriveRoutes builds route records from every file classified api_route.
// The route path comes from the file path with framework prefixes and
// extensions stripped; exported HTTP-verb handlers become the method list.
func deriveRoutes(files []model.FileRecord) []model.ApiRouteRecord {
	routes := []model.ApiRouteRecord{}

	for i := range files {
		f := &files[i]
		if f.Type != model.FileTypeAPIRoute {
			continue
		}

		var methods, handlers []string
		for _, e := range f.Exports {
			handlers = append(handlers, e.Name)
			if httpMethods[e.Name] {
				methods = append(methods, e.Name)
			}
		}
		if len(methods) == 0 {
			// A default-exported handler answers GET unless the body says
			// otherwise; this is the common pages-router shape.
			methods = []string{"GET"}
		}
		sort.Strings(methods)

		routes = append(routes, model.ApiRouteRecord{
			Path:     routePath(f.Path),
			Methods:  methods,
			File:     f.Path,
			Handlers: handlers,
		})
	}

	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// routePath maps an api_route file path to its URL path: "api/users.ts"
// becomes "/users", "app/api/users/route.ts" becomes "/users", and dynamic
// segments like "[id]" become ":id".
func routePath(filePath string) string {
	p := strings.TrimSuffix(filePath, pathExt(filePath))

	for _, prefix := range []string{"src/app/api/", "app/api/", "src/pages/api/", "pages/api/", "src/api/", "api/", "src/routes/", "routes/"} {
		if strings.HasPrefix(p, prefix) {
			p = strings.TrimPrefix(p, prefix)
			break
		}
	}

	p = strings.TrimSuffix(p, "/route")
	p = strings.TrimSuffix(p, "/index")
	if p == "index" || p == "route" {
		p = ""
	}

	p = reDynamicSegment.ReplaceAllString(p, ":$1")
	return "/" + p
}

// derivePages builds page records from every file classified page. Imported
// PascalCase names approximate the components the page renders.
func derivePages(files []model.FileRecord) []model.PageRecord {
	pages := []model.PageRecord{}

	for i := range files {
		f := &files[i]
		if f.Type != model.FileTypePage {
			continue
		}

		var components []string
		seen := make(map[string]bool)
		for _, imp := range f.Imports {
			for _, name := range imp.Names {
				if isComponentName(name) && !seen[name] {
					seen[name] = true
					components = append(components, name)
				}
			}
		}
		sort.Strings(components)

		pages = append(pages, model.PageRecord{
			Path:       pagePath(f.Path),
			File:       f.Path,
			Components: components,
		})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return pages
}

// pagePath maps a page file path to its URL path.
func pagePath(filePath string) string {
	p := strings.TrimSuffix(filePath, pathExt(filePath))

	for _, prefix := range []string{"src/app/", "app/", "src/pages/", "pages/", "src/views/", "views/", "src/screens/", "screens/"} {
		if strings.HasPrefix(p, prefix) {
			p = strings.TrimPrefix(p, prefix)
			break
		}
	}

	p = strings.TrimSuffix(p, "/page")
	p = strings.TrimSuffix(p, "/index")
	if p == "index" || p == "page" || p == "layout" {
		p = ""
	}

	p = reDynamicSegment.ReplaceAllString(p, ":$1")
	return "/" + p
}

func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}

// deriveServices aggregates external call sites into per-service usage,
// sorted by usage count descending, then name.
func deriveServices(files []model.FileRecord) []model.ServiceUsage {
	counts := make(map[string]int)
	fileSets := make(map[string]map[string]bool)

	for i := range files {
		for _, c := range files[i].ExternalCalls {
			counts[c.Service]++
			if fileSets[c.Service] == nil {
				fileSets[c.Service] = make(map[string]bool)
			}
			fileSets[c.Service][files[i].Path] = true
		}
	}

	services := make([]model.ServiceUsage, 0, len(counts))
	for name, count := range counts {
		paths := make([]string, 0, len(fileSets[name]))
		for p := range fileSets[name] {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		services = append(services, model.ServiceUsage{
			Name:       name,
			UsageCount: count,
			Files:      paths,
		})
	}

	sort.Slice(services, func(i, j int) bool {
		if services[i].UsageCount != services[j].UsageCount {
			return services[i].UsageCount > services[j].UsageCount
		}
		return services[i].Name < services[j].Name
	})
	return services
}

func pathExt(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 && !strings.ContainsRune(p[i:], '/') {
		return p[i:]
	}
	return ""
}
