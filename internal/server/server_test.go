package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/studio/internal/config"
	"github.com/vango-dev/studio/internal/telemetry"
	"github.com/vango-dev/studio/pkg/editor"
	"github.com/vango-dev/studio/pkg/preview"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"App.js":                "export default function App() {}\n",
		"components/Button.js":  "export default function Button() {}\n",
		"screens/HomeScreen.js": "export default function HomeScreen() {}\n",
	} {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.New()
	cfg.Name = "Barber"
	cfg.BuildServer.Disabled = true
	cfg.Workspace.Dir = dir

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))

	ed, err := editor.New(cfg, editor.Deps{Logger: quiet, Metrics: metrics})
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := New(ed, WithLogger(quiet), WithMetrics(metrics, reg))
	t.Cleanup(func() {
		s.Close()
		ed.Dispose()
	})
	return s, reg
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type stateBody struct {
	Mode      string `json:"mode"`
	Tier      string `json:"tier"`
	ErrorCode string `json:"errorCode"`
	Component *struct {
		ID string `json:"id"`
	} `json:"component"`
	Props map[string]any `json:"props"`
}

func TestComponents(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/components", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[struct {
		Components []struct {
			ID string `json:"id"`
		} `json:"components"`
		Categories []string `json:"categories"`
	}](t, rec)
	ids := make([]string, len(body.Components))
	for i, c := range body.Components {
		ids[i] = c.ID
	}
	if !strings.Contains(strings.Join(ids, ","), "components/Button") {
		t.Errorf("ids = %v", ids)
	}
	if len(body.Categories) == 0 {
		t.Error("no categories")
	}

	rec = do(t, s, http.MethodPost, "/api/components/scan", "")
	scan := decodeBody[struct {
		Count int `json:"count"`
	}](t, rec)
	if scan.Count != len(ids) {
		t.Errorf("scan count = %d, want %d", scan.Count, len(ids))
	}
}

func TestSession(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/session", "")
	first := decodeBody[struct {
		SessionID string `json:"sessionId"`
	}](t, rec)
	if !strings.HasPrefix(first.SessionID, "local-") {
		t.Fatalf("session = %q", first.SessionID)
	}

	rec = do(t, s, http.MethodPost, "/api/session/new", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	second := decodeBody[struct {
		SessionID string `json:"sessionId"`
	}](t, rec)
	if second.SessionID == first.SessionID {
		t.Error("session not replaced")
	}
}

func TestDragAndDrop(t *testing.T) {
	s, _ := newTestServer(t)
	payload := `"payload":{"componentId":"components/Button","componentName":"Button","componentType":"button","category":"components"}`

	rec := do(t, s, http.MethodPost, "/api/drag/start", `{`+payload+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body)
	}
	if sess := decodeBody[struct {
		ID string `json:"id"`
	}](t, rec); sess.ID == "" {
		t.Error("drag session has no id")
	}

	rec = do(t, s, http.MethodPost, "/api/drag/move", `{"x":10,"y":10}`)
	if move := decodeBody[struct {
		Active string `json:"active"`
	}](t, rec); move.Active != editor.PhoneZoneID {
		t.Errorf("active = %q", move.Active)
	}

	rec = do(t, s, http.MethodPost, "/api/drag/drop", `{`+payload+`,"x":10,"y":10}`)
	drop := decodeBody[struct {
		Accepted bool      `json:"accepted"`
		State    stateBody `json:"state"`
	}](t, rec)
	if !drop.Accepted || drop.State.Mode != "component" || drop.State.Component.ID != "components/Button" {
		t.Fatalf("drop = %+v", drop)
	}

	rec = do(t, s, http.MethodPost, "/api/drag/drop", `{`+payload+`,"x":9000,"y":9000}`)
	missed := decodeBody[struct {
		Accepted bool   `json:"accepted"`
		Code     string `json:"code"`
	}](t, rec)
	if missed.Accepted || missed.Code != "E220" {
		t.Errorf("drop outside = %+v", missed)
	}

	rec = do(t, s, http.MethodPost, "/api/drag/end", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("end status = %d", rec.Code)
	}
}

func TestDragStartRequiresType(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/drag/start", `{"payload":{"componentId":"x"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody[errorBody](t, rec); body.Code != "E250" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestSurfaceBounds(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPut, "/api/surface/bounds", `{"x":500,"y":0,"width":100,"height":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/drag/drop", `{"componentType":"button","payload":{"componentId":"components/Button"},"x":10,"y":10}`)
	if drop := decodeBody[struct {
		Accepted bool `json:"accepted"`
	}](t, rec); drop.Accepted {
		t.Error("drop at the old surface position accepted")
	}
	rec = do(t, s, http.MethodGet, "/api/zones", "")
	if !strings.Contains(rec.Body.String(), `"x":500`) {
		t.Errorf("zones = %s", rec.Body)
	}
}

func TestRenderLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/render/component/components/Button", `{"props":{"label":"Book now"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("render component: %d %s", rec.Code, rec.Body)
	}
	st := decodeBody[stateBody](t, rec)
	if st.Mode != "component" || st.Props["label"] != "Book now" {
		t.Fatalf("state = %+v", st)
	}

	rec = do(t, s, http.MethodGet, "/api/inspect/components/Button", "")
	if id := decodeBody[preview.Identity](t, rec); id.ID != "components/Button" {
		t.Errorf("inspect = %+v", id)
	}

	rec = do(t, s, http.MethodPost, "/api/render/reload", "")
	if st := decodeBody[stateBody](t, rec); st.Mode != "component" || st.Props["label"] != "Book now" {
		t.Errorf("reload state = %+v", st)
	}

	rec = do(t, s, http.MethodPost, "/api/render/app", "")
	if st := decodeBody[stateBody](t, rec); st.Mode != "app" || st.Tier != "session" {
		t.Errorf("app state = %+v", st)
	}

	rec = do(t, s, http.MethodPost, "/api/render/clear", "")
	if st := decodeBody[stateBody](t, rec); st.Mode != "idle" {
		t.Errorf("clear state = %+v", st)
	}

	rec = do(t, s, http.MethodGet, "/api/render/state", "")
	if st := decodeBody[stateBody](t, rec); st.Mode != "idle" {
		t.Errorf("state = %+v", st)
	}

	rec = do(t, s, http.MethodGet, "/api/inspect/components/Button", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("inspect after clear = %d", rec.Code)
	}
}

func TestRenderUnknownComponent(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/render/component/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decodeBody[errorBody](t, rec); body.Code != "E214" {
		t.Errorf("code = %q", body.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/render/state", "")
	if st := decodeBody[stateBody](t, rec); st.Mode != "error" || st.ErrorCode != "E214" {
		t.Errorf("state = %+v", st)
	}
}

func TestBadRequestBody(t *testing.T) {
	s, _ := newTestServer(t)
	for _, body := range []string{`{`, `{"unknown":1}`} {
		rec := do(t, s, http.MethodPost, "/api/drag/move", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rec.Code)
		}
	}
}

func TestPreviewPage(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/preview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<!DOCTYPE html>", "Barber preview", "studio-phone", "studio-app-source"} {
		if !strings.Contains(body, want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodGet, "/api/components", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"studio_http_requests_total", `route="/api/components"`, "studio_renders_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"E214", http.StatusNotFound},
		{"E232", http.StatusConflict},
		{"E250", http.StatusBadRequest},
		{"E210", http.StatusBadGateway},
		{"E241", http.StatusBadGateway},
		{"E262", http.StatusBadRequest},
		{"E220", http.StatusUnprocessableEntity},
		{"E230", http.StatusInternalServerError},
		{"E215", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.code); got != tt.want {
			t.Errorf("statusOf(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestHostEvents(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/_studio/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev struct {
		Type   string          `json:"type"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventState || !strings.Contains(string(ev.Detail), `"mode":"app"`) {
		t.Fatalf("welcome = %s %s", ev.Type, ev.Detail)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.Hub().ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec := do(t, s, http.MethodPost, "/api/render/component/components/Button", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("render: %d", rec.Code)
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != preview.EventRender || !strings.Contains(string(ev.Detail), "components/Button") {
		t.Errorf("event = %s %s", ev.Type, ev.Detail)
	}

	s.Close()
	if s.Hub().ClientCount() != 0 {
		t.Error("clients left after Close")
	}
}

func TestWriteFile(t *testing.T) {
	s, _ := newTestServer(t)
	dir := s.editor.Config().WorkspacePath()
	processed := s.editor.Reloader().Processed()

	rec := do(t, s, http.MethodPut, "/api/files/screens/BookingScreen.js",
		`{"content":"export default function BookingScreen() {}\n"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := decodeBody[struct {
		Path      string `json:"path"`
		SessionID string `json:"sessionId"`
	}](t, rec)
	if body.Path != "screens/BookingScreen.js" || body.SessionID == "" {
		t.Errorf("body = %+v", body)
	}

	data, err := os.ReadFile(filepath.Join(dir, "screens", "BookingScreen.js"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "BookingScreen") {
		t.Errorf("file content = %q", data)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.editor.Reloader().Processed() == processed {
		if time.Now().After(deadline) {
			t.Fatal("write did not trigger a reload")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWriteFileRequiresContent(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPut, "/api/files/App.js", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeBody[errorBody](t, rec).Code; got != "E250" {
		t.Errorf("code = %q", got)
	}
}

func TestHostSessionEvents(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/_studio/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	deadline := time.Now().Add(5 * time.Second)
	for s.Hub().ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec := do(t, s, http.MethodPost, "/api/session/new", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("new session: %d", rec.Code)
	}
	want := decodeBody[struct {
		SessionID string `json:"sessionId"`
	}](t, rec).SessionID

	for {
		var ev struct {
			Type   string          `json:"type"`
			Detail json.RawMessage `json:"detail"`
		}
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("no session event: %v", err)
		}
		if ev.Type != EventSession {
			continue
		}
		if !strings.Contains(string(ev.Detail), want) {
			t.Errorf("session event = %s, want id %s", ev.Detail, want)
		}
		return
	}
}
