package api

import (
	"net/http"

	"codeatlas/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health and readiness checks
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)

	// Scan control
	s.router.HandleFunc("/scan", s.handleScan) // POST

	// Snapshot queries
	s.router.HandleFunc("/stats", s.handleStats)
	s.router.HandleFunc("/files", s.handleListFiles) // GET ?type=...&q=...
	s.router.HandleFunc("/files/", s.handleGetFile)  // GET /files/:path
	s.router.HandleFunc("/routes", s.handleRoutes)   // GET
	s.router.HandleFunc("/pages", s.handlePages)     // GET
	s.router.HandleFunc("/modules", s.handleModules) // GET
	s.router.HandleFunc("/modules/", s.handleModule) // GET /modules/:name
	s.router.HandleFunc("/services", s.handleServices)
	s.router.HandleFunc("/edges", s.handleEdges) // GET ?file=...
	s.router.HandleFunc("/graph", s.handleGraph) // GET ?view=...&module=...
	s.router.HandleFunc("/search", s.handleSearch)

	// Root endpoint
	s.router.HandleFunc("/", s.handleRoot)
}

// handleRoot handles requests to the root path
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"name":    "Code Atlas HTTP API",
		"version": version.Version,
		"endpoints": []string{
			"GET /health - Health check",
			"GET /ready - Readiness check (snapshot present)",
			"POST /scan - Run a scan (?subdir=... narrows the tree)",
			"GET /stats - Snapshot summary statistics",
			"GET /files?type=...&q=... - List files",
			"GET /files/:path - File detail with dependencies",
			"GET /routes - API routes",
			"GET /pages - Pages",
			"GET /modules - Modules",
			"GET /modules/:name - Module detail",
			"GET /services - External service usage",
			"GET /edges?file=... - Dependency edges",
			"GET /graph?view=modules|files|routes&module=... - Graph views",
			"GET /search?q=... - Search files, routes, and pages",
		},
	}

	WriteJSON(w, response, http.StatusOK)
}
