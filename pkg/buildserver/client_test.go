package buildserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vango-dev/studio/internal/errors"
)

func TestInitSession(t *testing.T) {
	var gotForce bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/session/init" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			ForceNew bool `json:"forceNew"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotForce = body.ForceNew
		json.NewEncoder(w).Encode(map[string]string{
			"sessionId":     "s-1",
			"workspacePath": "/ws/s-1",
			"sessionPath":   "/sessions/s-1",
		})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	info, err := c.InitSession(context.Background(), true)
	if err != nil {
		t.Fatalf("InitSession: %v", err)
	}
	if !gotForce {
		t.Error("forceNew not sent")
	}
	if info.SessionID != "s-1" || info.WorkspacePath != "/ws/s-1" || info.SessionPath != "/sessions/s-1" {
		t.Errorf("info = %+v", info)
	}
}

func TestInitSessionWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).InitSession(context.Background(), false)
	if !errors.HasCode(err, "E242") {
		t.Errorf("err = %v, want E242", err)
	}
}

func TestReadWriteFile(t *testing.T) {
	files := map[string]string{"/session-file/s-1/src/App.js": "export default App"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			content, ok := files[r.URL.Path]
			if !ok {
				w.Write([]byte(`{"success":false,"error":"not found"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "content": content})
		case http.MethodPut:
			var body struct {
				Content string `json:"content"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			files[r.URL.Path] = body.Content
			w.Write([]byte(`{"success":true}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	got, err := c.ReadFile(ctx, "s-1", "src/App.js")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != "export default App" {
		t.Errorf("content = %q", got)
	}

	if err := c.WriteFile(ctx, "s-1", "/src/Home.js", "home"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if files["/session-file/s-1/src/Home.js"] != "home" {
		t.Errorf("write not stored: %v", files)
	}

	_, err = c.ReadFile(ctx, "s-1", "missing.js")
	if !errors.HasCode(err, "E241") {
		t.Errorf("missing file err = %v, want E241", err)
	}
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ScanComponents(context.Background())
	if !errors.HasCode(err, "E241") {
		t.Errorf("err = %v, want E241", err)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).ScanComponents(context.Background())
	if !errors.HasCode(err, "E240") {
		t.Errorf("err = %v, want E240", err)
	}
}

func TestScanComponentsLenient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"components": [
			{"id": "cards/ServiceCard", "name": "Service Card", "path": "src/components/cards/ServiceCard.js", "tags": ["card", 3]},
			{"name": 42, "filePath": "src/screens/HomeScreen.js", "tags": "screen"},
			"not-an-object",
			{}
		]}`))
	}))
	defer srv.Close()

	comps, err := New(srv.URL).ScanComponents(context.Background())
	if err != nil {
		t.Fatalf("ScanComponents: %v", err)
	}
	if len(comps) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(comps), comps)
	}
	if comps[0].ID != "cards/ServiceCard" || len(comps[0].Tags) != 1 || comps[0].Tags[0] != "card" {
		t.Errorf("comps[0] = %+v", comps[0])
	}
	if comps[1].Name != "42" || comps[1].Path != "src/screens/HomeScreen.js" || comps[1].Tags[0] != "screen" {
		t.Errorf("comps[1] = %+v", comps[1])
	}
	if !comps[2].Empty() {
		t.Errorf("comps[2] = %+v, want empty", comps[2])
	}
}

func TestScanComponentsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"components": []}`))
	}))
	defer srv.Close()

	comps, err := New(srv.URL).ScanComponents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if comps == nil || len(comps) != 0 {
		t.Errorf("comps = %#v, want empty non-nil", comps)
	}
}

func TestSessionFilePathEscaping(t *testing.T) {
	got := sessionFilePath("a b", "/src/my file.js")
	want := "/session-file/a%20b/src/my%20file.js"
	if got != want {
		t.Errorf("sessionFilePath = %q, want %q", got, want)
	}
}
