package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/studio/internal/errors"
	"github.com/vango-dev/studio/pkg/catalog"
	"github.com/vango-dev/studio/pkg/dropzone"
	"github.com/vango-dev/studio/pkg/preview"
	"github.com/vango-dev/studio/pkg/render"
	"github.com/vango-dev/studio/pkg/vdom"
)

type componentsResponse struct {
	Components []catalog.Metadata `json:"components"`
	Categories []string           `json:"categories"`
	Generation uint64             `json:"generation"`
}

func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	reg := s.editor.Registry()
	comps := reg.List()
	if category := r.URL.Query().Get("category"); category != "" {
		comps = reg.ByCategory(category)
	}
	writeJSON(w, http.StatusOK, componentsResponse{
		Components: comps,
		Categories: reg.Categories(),
		Generation: reg.Generation(),
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	n := s.editor.Rescan(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      n,
		"generation": s.editor.Registry().Generation(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	info, ok := s.editor.Sessions().Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no active session", Code: "E211"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.editor.NewSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"zones": s.editor.Zones().Zones()})
}

func (s *Server) handleSurfaceBounds(w http.ResponseWriter, r *http.Request) {
	var rect dropzone.Rect
	if err := decode(r, &rect); err != nil {
		writeError(w, err)
		return
	}
	s.editor.Surface().SetBounds(rect)
	writeJSON(w, http.StatusOK, rect)
}

type dragRequest struct {
	ComponentType string           `json:"componentType"`
	Payload       dropzone.Payload `json:"payload"`
	X             float64          `json:"x"`
	Y             float64          `json:"y"`
}

// componentType defaults to the payload's type.
func (d dragRequest) componentType() string {
	if d.ComponentType != "" {
		return d.ComponentType
	}
	return d.Payload.ComponentType
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.componentType() == "" {
		writeError(w, errors.New("E250").WithDetail("componentType is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Zones().StartDrag(req.componentType(), req.Payload))
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	zones := s.editor.Zones()
	zones.UpdateDragPosition(req.X, req.Y)
	active, _ := zones.Active()
	writeJSON(w, http.StatusOK, map[string]any{"active": active})
}

type dropResponse struct {
	Accepted bool          `json:"accepted"`
	Code     string        `json:"code,omitempty"`
	State    preview.State `json:"state"`
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	accepted := s.editor.Zones().HandleDrop(req.componentType(), req.Payload, req.X, req.Y)
	resp := dropResponse{Accepted: accepted, State: s.editor.Renderer().State()}
	if !accepted {
		resp.Code = "E220"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	s.editor.Zones().EndDrag()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Renderer().State())
}

// renderResult reports err, or the resulting state.
func (s *Server) renderResult(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.Renderer().State())
}

func (s *Server) handleRenderApp(w http.ResponseWriter, r *http.Request) {
	s.renderResult(w, s.editor.Surface().ClearSelection(r.Context()))
}

func (s *Server) handleRenderComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")
	var req struct {
		Props map[string]any `json:"props"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.renderResult(w, s.editor.Surface().Select(r.Context(), id, req.Props))
}

func (s *Server) handleRenderClear(w http.ResponseWriter, r *http.Request) {
	s.editor.Surface().Clear()
	writeJSON(w, http.StatusOK, s.editor.Renderer().State())
}

func (s *Server) handleRenderReload(w http.ResponseWriter, r *http.Request) {
	s.renderResult(w, s.editor.Renderer().Reload(r.Context()))
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")
	node := s.editor.Surface().FindInspectable(id)
	if node == nil {
		writeError(w, errors.New("E214").WithSource(id).WithDetail("not in the current preview"))
		return
	}
	writeJSON(w, http.StatusOK, preview.IdentityOf(node))
}

// fileResponse acknowledges a workspace write.
type fileResponse struct {
	Path      string `json:"path"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	var req struct {
		Content *string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if path == "" || req.Content == nil {
		writeError(w, errors.New("E250").WithDetail("a file path and content are required"))
		return
	}
	if err := s.editor.WriteFile(r.Context(), path, *req.Content); err != nil {
		writeError(w, err)
		return
	}
	info, _ := s.editor.Sessions().Current()
	writeJSON(w, http.StatusOK, fileResponse{Path: path, SessionID: info.SessionID})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	cfg := s.editor.Config()
	title := "Studio preview"
	if cfg.Name != "" {
		title = cfg.Name + " preview"
	}

	page := vdom.El("html",
		vdom.El("head",
			vdom.El("meta", vdom.Attr{Key: "charset", Value: "utf-8"}),
			vdom.El("title", title),
		),
		vdom.El("body",
			vdom.Class("studio-preview"),
			s.editor.Surface().Node(),
		),
	)
	html, err := render.HTML(page)
	if err != nil {
		writeError(w, errors.New("E230").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!DOCTYPE html>\n"+html)
}
