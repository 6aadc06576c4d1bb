package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/animations/stripindex"
	"github.com/nerrad567/ledbetter/internal/audit"
	"github.com/nerrad567/ledbetter/internal/auth"
	"github.com/nerrad567/ledbetter/internal/control"
	"github.com/nerrad567/ledbetter/internal/infrastructure/config"
	"github.com/nerrad567/ledbetter/internal/infrastructure/database"
	"github.com/nerrad567/ledbetter/internal/infrastructure/logging"
	"github.com/nerrad567/ledbetter/internal/layout"
	"github.com/nerrad567/ledbetter/internal/player"
	"github.com/nerrad567/ledbetter/internal/process"
	"github.com/nerrad567/ledbetter/migrations"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

// testServer runs a stripindex animation on strips of 3 and 2 pixels behind
// an httptest server. secret enables token checks when non-empty.
func testServer(t *testing.T, secret string) (*Server, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	wsCfg := config.WebSocketConfig{
		MaxMessageSize: 8192,
		PingInterval:   30,
		PongTimeout:    10,
		FrameEvery:     1,
	}

	rt := animation.MustNew(stripindex.Definition)
	for _, err := range []error{
		rt.SetStripCount(2), rt.SetStripLength(0, 3), rt.SetStripLength(1, 2), rt.FinalizeLayout(),
	} {
		if err != nil {
			t.Fatalf("building layout: %v", err)
		}
	}
	p, err := player.New(rt, player.Config{Interval: 5 * time.Millisecond, RunID: "run-1"}, log)
	if err != nil {
		t.Fatalf("player.New() error = %v", err)
	}
	hub := NewHub(wsCfg, log)
	p.AddSink(hub)
	go p.Run(ctx)
	go hub.Run(ctx)

	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	srv, err := New(Deps{
		Config:     config.APIConfig{Host: "127.0.0.1", Port: 0},
		WS:         wsCfg,
		Security:   config.SecurityConfig{JWT: config.JWTConfig{Secret: secret}},
		Logger:     log,
		Controller: control.New(p, log),
		Layouts:    layout.NewSQLiteRepository(db.DB),
		Hub:        hub,
		Audit:      audit.NewSQLiteRepository(db.DB),
		OPCServer:  fakeOPCServer{},
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	go srv.drainAuditLog(ctx)

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-p.Done()
		db.Close() //nolint:errcheck // Test cleanup
	})
	return srv, ts
}

type fakeOPCServer struct{}

func (fakeOPCServer) Stats() process.Stats {
	return process.Stats{Name: "fcserver", Status: process.StatusRunning, PID: 42}
}

func do(t *testing.T, method, url, body, token string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, data
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() without logger should fail")
	}
	log := logging.New(config.LoggingConfig{Level: "error"}, "test")
	if _, err := New(Deps{Logger: log}); err == nil {
		t.Error("New() without controller should fail")
	}
}

func TestHealth(t *testing.T) {
	_, ts := testServer(t, "")

	resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/health", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["status"] != "ok" || got["animation"] != "stripindex" || got["run_id"] != "run-1" {
		t.Errorf("health = %v", got)
	}
	opc, ok := got["opc_server"].(map[string]any)
	if !ok || opc["status"] != "running" || opc["pid"] != 42.0 {
		t.Errorf("opc_server = %v", got["opc_server"])
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestGetAnimation(t *testing.T) {
	_, ts := testServer(t, "")

	resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/animation", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var got struct {
		Name      string          `json:"name"`
		Params    []control.Param `json:"params"`
		Available []string        `json:"available"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "stripindex" || len(got.Params) != 1 || got.Params[0].Name != "offset" {
		t.Errorf("animation = %+v", got)
	}
	if len(got.Available) != 5 {
		t.Errorf("available = %v, want 5 animations", got.Available)
	}
}

func TestSetParam(t *testing.T) {
	_, ts := testServer(t, "")

	tests := []struct {
		name       string
		param      string
		body       string
		wantStatus int
	}{
		{"valid", "offset", `{"value": 10}`, http.StatusOK},
		{"unknown param", "brightness", `{"value": 1}`, http.StatusNotFound},
		{"fractional integer", "offset", `{"value": 1.5}`, http.StatusBadRequest},
		{"missing value", "offset", `{}`, http.StatusBadRequest},
		{"invalid JSON", "offset", `value=1`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPut, ts.URL+"/api/v1/params/"+tt.param, tt.body, "")
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}

	_, body := do(t, http.MethodGet, ts.URL+"/api/v1/params", "", "")
	var got struct {
		Params []control.Param `json:"params"`
		Count  int             `json:"count"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Count != 1 || got.Params[0].Value != 10 {
		t.Errorf("params after update = %+v", got)
	}
}

func TestSetParam_RequiresToken(t *testing.T) {
	_, ts := testServer(t, testSecret)

	token, err := auth.GenerateToken("test", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	foreign, err := auth.GenerateToken("test", "some-other-secret-that-is-long-enough", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong secret", foreign, http.StatusUnauthorized},
		{"garbage", "abc", http.StatusUnauthorized},
		{"valid", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPut, ts.URL+"/api/v1/params/offset", `{"value": 2}`, tt.token)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}

	// Reads stay open.
	if resp, _ := do(t, http.MethodGet, ts.URL+"/api/v1/params", "", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("GET /params status = %d, want 200", resp.StatusCode)
	}
}

func TestGetFrame(t *testing.T) {
	_, ts := testServer(t, "")

	resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/frame", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var got frameResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Shape) != 2 || got.Shape[0] != 3 || got.Shape[1] != 2 {
		t.Errorf("shape = %v, want [3 2]", got.Shape)
	}
	if len(got.Pixels) != 2 || len(got.Pixels[1]) != 2 {
		t.Errorf("pixels = %v", got.Pixels)
	}
}

func TestLayouts(t *testing.T) {
	_, ts := testServer(t, "")
	base := ts.URL + "/api/v1/layouts"

	spec := `{"strips": [{"points": [{"x": 0, "y": 0}, {"x": 1, "y": 0}]}, {"line": {"from": {"x": 0, "y": 1}, "to": {"x": 9, "y": 1}, "count": 10}}]}`
	resp, body := do(t, http.MethodPut, base+"/shelf", spec, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, base, "", "")
	var list struct {
		Layouts []layout.Summary `json:"layouts"`
		Count   int              `json:"count"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.StatusCode != http.StatusOK || list.Count != 1 || list.Layouts[0].Pixels != 12 {
		t.Errorf("list = %+v (status %d)", list, resp.StatusCode)
	}

	resp, body = do(t, http.MethodGet, base+"/shelf", "", "")
	var got layout.Spec
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if resp.StatusCode != http.StatusOK || got.Name != "shelf" || got.PixelCount() != 12 {
		t.Errorf("layout = %+v (status %d)", got, resp.StatusCode)
	}

	if resp, _ := do(t, http.MethodPut, base+"/broken", `{"strips": [{"line": {"count": -1}}]}`, ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("PUT invalid layout status = %d, want 400", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodGet, base+"/missing", "", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET missing status = %d, want 404", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodDelete, base+"/shelf", "", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodDelete, base+"/shelf", "", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := testServer(t, "")

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/params/offset", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Origin", "http://dashboard.local")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://dashboard.local" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// readEvent reads messages until one of the given event type arrives.
func readEvent(t *testing.T, ws *websocket.Conn, eventType string) WSMessage {
	t.Helper()
	//nolint:errcheck // Test deadline
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("reading %s event: %v", eventType, err)
		}
		if msg.Type == WSTypeEvent && msg.EventType == eventType {
			return msg
		}
	}
}

func TestWebSocket_FrameStream(t *testing.T) {
	srv, ts := testServer(t, "")
	ws := dialWS(t, ts)

	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: []string{ChannelFrame, ChannelParams}},
	}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	//nolint:errcheck // Test deadline
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var response WSMessage
	if err := ws.ReadJSON(&response); err != nil {
		t.Fatalf("read response: %v", err)
	}
	if response.Type != WSTypeResponse || response.ID != "sub-1" {
		t.Errorf("response = %+v", response)
	}
	if srv.Hub().ClientCount() != 1 {
		t.Errorf("hub client count = %d, want 1", srv.Hub().ClientCount())
	}

	msg := readEvent(t, ws, ChannelFrame)
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		t.Fatalf("re-marshal payload: %v", err)
	}
	var frame FramePayload
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Seq == 0 || len(frame.Pixels) != 2 || len(frame.Pixels[0]) != 3 {
		t.Errorf("frame = %+v", frame)
	}

	if resp, body := do(t, http.MethodPut, ts.URL+"/api/v1/params/offset", `{"value": 4}`, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", resp.StatusCode, body)
	}
	msg = readEvent(t, ws, ChannelParams)
	if p, ok := msg.Payload.(map[string]any); !ok || p["name"] != "offset" || p["value"] != float64(4) {
		t.Errorf("params event payload = %v", msg.Payload)
	}
}

func TestWebSocket_UnknownMessage(t *testing.T) {
	_, ts := testServer(t, "")
	ws := dialWS(t, ts)

	if err := ws.WriteJSON(WSMessage{Type: "dance", ID: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	//nolint:errcheck // Test deadline
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != WSTypeError || msg.ID != "x" {
		t.Errorf("message = %+v, want error reply", msg)
	}
}

func TestAudit_RecordsControlActions(t *testing.T) {
	_, ts := testServer(t, testSecret)
	token, err := auth.GenerateToken("kitchen-panel", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	steps := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPut, "/api/v1/params/offset", `{"value": 7}`, http.StatusOK},
		{http.MethodPut, "/api/v1/layouts/porch", `{"strips": [{"line": {"count": 4}}]}`, http.StatusOK},
		{http.MethodDelete, "/api/v1/layouts/porch", "", http.StatusNoContent},
		{http.MethodPut, "/api/v1/params/nope", `{"value": 1}`, http.StatusNotFound},
	}
	for _, st := range steps {
		if resp, body := do(t, st.method, ts.URL+st.path, st.body, token); resp.StatusCode != st.want {
			t.Fatalf("%s %s status = %d, want %d (body %s)", st.method, st.path, resp.StatusCode, st.want, body)
		}
	}

	if resp, _ := do(t, http.MethodGet, ts.URL+"/api/v1/audit", "", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /audit without token status = %d, want 401", resp.StatusCode)
	}

	var got audit.ListResult
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/audit", "", token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET /audit status = %d, body = %s", resp.StatusCode, body)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Total == 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got.Total != 3 {
		t.Fatalf("audit total = %d, want 3 (failed requests are not recorded)", got.Total)
	}

	wantActions := []string{audit.ActionLayoutDelete, audit.ActionLayoutPut, audit.ActionParamSet}
	for i, e := range got.Entries {
		if e.Action != wantActions[i] || e.Subject != "kitchen-panel" || e.Source != "api" {
			t.Errorf("entry %d = %+v, want action %s by kitchen-panel", i, e, wantActions[i])
		}
	}
	if v := got.Entries[2].Details["value"]; v != 7.0 {
		t.Errorf("param.set value = %v, want 7", v)
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/audit?action=param.set&limit=x", "", token)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400 (body %s)", resp.StatusCode, body)
	}
}

func TestPanel(t *testing.T) {
	_, ts := testServer(t, "")

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/panel")
	if err != nil {
		t.Fatalf("GET /panel: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMovedPermanently || resp.Header.Get("Location") != "/panel/" {
		t.Errorf("GET /panel = %d to %q, want 301 to /panel/", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/panel/", "", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "preview.js") {
		t.Errorf("GET /panel/ = %d, body does not load preview.js", resp.StatusCode)
	}
}
