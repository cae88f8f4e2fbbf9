package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/events"
	"github.com/loom-ui/loom/pkg/reactive"
	"github.com/loom-ui/loom/pkg/vdom"
)

// counterApp renders a button that bumps a bound signal on click.
func counterApp(ctx *AppContext) error {
	n := 0
	count := reactive.NewSignal("0")
	return ctx.Root.Render(vdom.El("root",
		vdom.El("button", vdom.Props{
			vdom.KeyOn: map[string]any{
				"click": func(*dom.Event) {
					n++
					count.Set(strconv.Itoa(n))
				},
			},
		}, vdom.Text("inc")),
		vdom.El("output", vdom.P("title"), count),
	))
}

func newTestServer(t *testing.T, app App) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(app, &Config{}, WithRegisterer(prometheus.NewRegistry()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestIndexServesRenderedPage(t *testing.T) {
	_, ts := newTestServer(t, counterApp)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	for _, want := range []string{"<!DOCTYPE html>", "<button>inc</button>", "<output"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q:\n%s", want, body)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var out outbound
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSessionStreamsInitialPatch(t *testing.T) {
	srv, ts := newTestServer(t, counterApp)
	conn := dialWS(t, ts)

	out := readFrame(t, conn)
	if out.Type != "patch" || out.Seq != 1 {
		t.Fatalf("frame = %+v, want patch seq 1", out)
	}
	var sawButton bool
	for _, m := range out.Mutations {
		if m.Op == dom.MutCreateElement && m.Tag == "button" {
			sawButton = true
		}
	}
	if !sawButton {
		t.Errorf("initial patch lacks button creation: %+v", out.Mutations)
	}

	// Session should be registered while the socket is open.
	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.SessionCount() != 1 {
		t.Errorf("sessions = %d, want 1", srv.SessionCount())
	}
}

func TestSessionDispatchesEvents(t *testing.T) {
	_, ts := newTestServer(t, counterApp)
	conn := dialWS(t, ts)

	initial := readFrame(t, conn)
	var buttonID uint64
	for _, m := range initial.Mutations {
		if m.Op == dom.MutCreateElement && m.Tag == "button" {
			buttonID = m.Node
		}
	}
	if buttonID == 0 {
		t.Fatal("no button in initial patch")
	}

	send := func() {
		if err := conn.WriteJSON(inbound{
			Type:  "event",
			Node:  buttonID,
			Event: eventOfType("click"),
		}); err != nil {
			t.Fatal(err)
		}
	}

	send()
	out := readFrame(t, conn)
	if out.Type != "patch" {
		t.Fatalf("frame = %+v, want patch", out)
	}
	if !hasAttrValue(out.Mutations, "title", "1") {
		t.Errorf("patch after click = %+v, want title=1", out.Mutations)
	}

	send()
	out = readFrame(t, conn)
	if !hasAttrValue(out.Mutations, "title", "2") {
		t.Errorf("patch after second click = %+v, want title=2", out.Mutations)
	}
}

func TestPingPong(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dialWS(t, ts)

	if err := conn.WriteJSON(inbound{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	out := readFrame(t, conn)
	if out.Type != "pong" {
		t.Errorf("frame = %+v, want pong", out)
	}
}

func TestSameHostOrigin(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "example.com", true},
		{"http://example.com", "example.com", true},
		{"https://example.com", "example.com", true},
		{"http://evil.com", "example.com", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = tt.host
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := sameHostOrigin(r); got != tt.want {
			t.Errorf("sameHostOrigin(%q on %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
		}
	}
}

func eventOfType(typ string) (ev events.RawEvent) {
	ev.Type = typ
	return ev
}

func hasAttrValue(muts []dom.Mutation, key, value string) bool {
	for _, m := range muts {
		if m.Op == dom.MutSetAttr && m.Key == key && m.Value == value {
			return true
		}
	}
	return false
}
