package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/handlers"
	"github.com/pollfish/pollfish-bridge/internal/pollfish"
	"github.com/pollfish/pollfish-bridge/internal/simulator"
	"github.com/pollfish/pollfish-bridge/internal/ws"
)

type testEnv struct {
	srv    *httptest.Server
	client *pollfish.Client
	hub    *ws.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	em := events.NewEmitter(nil)
	sim := simulator.New(em, simulator.Options{})
	client := pollfish.New(sim, em, pollfish.WithQueryTimeout(time.Second))
	hub := ws.NewHub(10, nil)
	for _, et := range events.All() {
		client.AddEventListener(et, hub)
	}

	h := handlers.New(handlers.Deps{
		Client:    client,
		Simulator: sim,
		Emitter:   em,
		Hub:       hub,
		Defaults:  handlers.Defaults{AndroidAPIKey: "default-key"},
	}, nil)

	srv := httptest.NewServer(New(h))
	t.Cleanup(func() {
		srv.Close()
		client.Close()
	})
	return &testEnv{srv: srv, client: client, hub: hub}
}

func (e *testEnv) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	res, err := http.Post(e.srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	res.Body.Close()
	return res
}

type state struct {
	Simulator simulator.State `json:"simulator"`
	PanelOpen bool            `json:"panel_open"`
	Present   bool            `json:"present"`
	Listeners map[string]int  `json:"listeners"`
}

func (e *testEnv) state(t *testing.T) state {
	t.Helper()
	res, err := http.Get(e.srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("state: status %d", res.StatusCode)
	}
	var s state
	if err := json.NewDecoder(res.Body).Decode(&s); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return s
}

func TestAPI_InitShowComplete(t *testing.T) {
	env := newTestEnv(t)

	if res := env.post(t, "/api/survey/show", ""); res.StatusCode != http.StatusConflict {
		t.Fatalf("show before init: expected 409, got %d", res.StatusCode)
	}

	res := env.post(t, "/api/init", `{"indicator_position":"bottom-right","reward_mode":true}`)
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("init: expected 202, got %d", res.StatusCode)
	}

	s := env.state(t)
	if !s.Simulator.Initialized || !s.Present || s.PanelOpen {
		t.Fatalf("unexpected state after init %+v", s)
	}
	if s.Listeners[events.SurveyCompleted.String()] != 1 {
		t.Errorf("expected hub listener, got %v", s.Listeners)
	}

	if res := env.post(t, "/api/survey/show", ""); res.StatusCode != http.StatusAccepted {
		t.Fatalf("show: expected 202, got %d", res.StatusCode)
	}
	if !env.state(t).PanelOpen {
		t.Fatal("expected panel open")
	}

	if res := env.post(t, "/api/survey/complete", ""); res.StatusCode != http.StatusAccepted {
		t.Fatalf("complete: expected 202, got %d", res.StatusCode)
	}
	s = env.state(t)
	if s.PanelOpen || s.Present {
		t.Errorf("expected survey consumed, got %+v", s)
	}
}

func TestAPI_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path   string
		body   string
		status int
	}{
		{"/api/init", `{"indicator_position":"center"}`, http.StatusBadRequest},
		{"/api/init", `{`, http.StatusBadRequest},
		{"/api/init", `{"indicator_padding":-1}`, http.StatusBadRequest},
		{"/api/survey/dance", "", http.StatusNotFound},
		{"/api/emit/onNothing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		if res := env.post(t, tt.path, tt.body); res.StatusCode != tt.status {
			t.Errorf("%s %s: expected %d, got %d", tt.path, tt.body, tt.status, res.StatusCode)
		}
	}
}

func TestAPI_EmitReachesHubHistory(t *testing.T) {
	env := newTestEnv(t)

	res := env.post(t, "/api/emit/"+events.SurveyReceived.String(), `{"surveyCPA":5}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("emit: expected 200, got %d", res.StatusCode)
	}

	history := env.hub.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 envelope, got %d", len(history))
	}
	var envl ws.Envelope
	if err := json.Unmarshal(history[0], &envl); err != nil {
		t.Fatal(err)
	}
	if envl.Type != events.SurveyReceived || string(envl.Data) != `{"surveyCPA":5}` {
		t.Errorf("unexpected envelope %+v", envl)
	}
}

func TestWS_StreamsEventsAndRunsActions(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "/api/init", `{}`)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() ws.Envelope {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var envl ws.Envelope
		if err := conn.ReadJSON(&envl); err != nil {
			t.Fatalf("read: %v", err)
		}
		return envl
	}

	// init history is replayed on connect
	if got := read().Type; got != events.InitiatedWithParams {
		t.Fatalf("expected replayed init event, got %s", got)
	}
	if got := read().Type; got != events.SurveyReceived {
		t.Fatalf("expected replayed survey event, got %s", got)
	}

	if err := conn.WriteJSON(map[string]string{"action": "show"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := read().Type; got != events.PollfishOpened {
		t.Fatalf("expected opened, got %s", got)
	}
}

func TestMetricsAndQR(t *testing.T) {
	env := newTestEnv(t)

	for path, ctype := range map[string]string{
		"/metrics": "text/plain",
		"/qr":      "image/png",
		"/":        "text/html",
	} {
		res, err := http.Get(env.srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, res.StatusCode)
		}
		if !strings.HasPrefix(res.Header.Get("Content-Type"), ctype) {
			t.Errorf("%s: expected %s, got %s", path, ctype, res.Header.Get("Content-Type"))
		}
	}
}

func TestAPI_AllowsCrossOriginCalls(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodOptions, env.srv.URL+"/api/init", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", "POST")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	res.Body.Close()

	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
