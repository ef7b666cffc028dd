package api

import (
	"net/http"
	"strings"

	"codeatlas/internal/logging"
)

// handleScan runs a scan of the configured tree. The optional subdir query
// parameter narrows the scan. Returns 409 while another scan is running.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	subdir := r.URL.Query().Get("subdir")
	if strings.Contains(subdir, "..") {
		BadRequest(w, "subdir must not traverse upward")
		return
	}

	snap, err := s.store.Scan(r.Context(), s.scanRoot, subdir)
	if err != nil {
		WriteError(w, err)
		return
	}

	s.logger.Info("scan completed via API", logging.Fields{
		"snapshot": snap.ID,
		"files":    snap.Stats.TotalFiles,
	})

	WriteJSON(w, map[string]interface{}{
		"id":          snap.ID,
		"scanned_at":  snap.ScannedAt,
		"total_files": snap.Stats.TotalFiles,
		"stats":       snap.Stats,
	}, http.StatusOK)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.GetStats()
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, stats, http.StatusOK)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.engine.ListFiles(r.URL.Query().Get("type"), r.URL.Query().Get("q"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, map[string]interface{}{
		"total": len(files),
		"files": files,
	}, http.StatusOK)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/files/")
	if path == "" {
		BadRequest(w, "file path required")
		return
	}

	detail, err := s.engine.GetFile(path)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, detail, http.StatusOK)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.engine.ListRoutes()
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, map[string]interface{}{
		"total":      len(routes),
		"api_routes": routes,
	}, http.StatusOK)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.engine.ListPages()
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, map[string]interface{}{
		"total": len(pages),
		"pages": pages,
	}, http.StatusOK)
}

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	mods, err := s.engine.ListModules()
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, map[string]interface{}{
		"total":   len(mods),
		"modules": mods,
	}, http.StatusOK)
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/modules/")
	if name == "" {
		BadRequest(w, "module name required")
		return
	}

	mod, err := s.engine.GetModule(name)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, mod, http.StatusOK)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.engine.ListServices()
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, map[string]interface{}{
		"total":             len(services),
		"external_services": services,
	}, http.StatusOK)
}

func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := s.engine.ListEdges(r.URL.Query().Get("file"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, map[string]interface{}{
		"total":            len(edges),
		"dependency_edges": edges,
	}, http.StatusOK)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "modules"
	}

	g, err := s.engine.ComposeGraph(view, r.URL.Query().Get("module"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, g, http.StatusOK)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		BadRequest(w, "query parameter q is required")
		return
	}

	result, err := s.engine.Search(q)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, result, http.StatusOK)
}
