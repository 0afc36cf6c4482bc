package bridge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/pocket-arcade/internal/sensor"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server, *sensor.Hub) {
	t.Helper()
	hub := sensor.NewHub()
	s := NewServer(hub, log.New(io.Discard))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, hub
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := Encode(typ, payload)
	if err != nil {
		t.Fatalf("Encode(%s): %v", typ, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEnvelopeCodec(t *testing.T) {
	b, err := Encode(MsgFace, sensor.Face{JawOpen: 0.7})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	face, err := DecodePayload[sensor.Face](env)
	if err != nil || face.JawOpen != 0.7 {
		t.Fatalf("DecodePayload = %+v, %v", face, err)
	}
}

func TestEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"empty", ""},
		{"not json", "hello"},
		{"missing type", `{"p":{}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeEnvelope([]byte(tc.frame)); !errors.Is(err, ErrBadEnvelope) {
				t.Errorf("DecodeEnvelope(%q) error = %v, expected ErrBadEnvelope", tc.frame, err)
			}
		})
	}

	if _, err := DecodePayload[Hello](Envelope{T: MsgHello}); !errors.Is(err, ErrBadEnvelope) {
		t.Errorf("empty payload error = %v", err)
	}
	if _, err := Encode("", Hello{}); !errors.Is(err, ErrBadEnvelope) {
		t.Errorf("empty type error = %v", err)
	}
}

func TestPadPage(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, want := range []string{`data-ws="/ws"`, `data-rate="25"`, "devicemotion", "Pocket Arcade Pad"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page does not contain %q", want)
		}
	}
}

func TestHelloWelcome(t *testing.T) {
	_, ts, _ := newTestServer(t)
	conn := dial(t, ts)

	write(t, conn, MsgHello, Hello{V: ProtocolVersion, Name: "test"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	env, err := DecodeEnvelope(msg)
	if err != nil || env.T != MsgWelcome {
		t.Fatalf("got %q (%v), expected welcome", msg, err)
	}
	welcome, err := DecodePayload[Welcome](env)
	if err != nil || welcome.Client == "" || len(welcome.Feeds) != 3 {
		t.Errorf("welcome = %+v, %v", welcome, err)
	}
}

func TestReadingsReachHub(t *testing.T) {
	s, ts, hub := newTestServer(t)
	conn := dial(t, ts)

	write(t, conn, MsgMotion, sensor.Motion{Acceleration: sensor.Vec3{X: 3}})
	write(t, conn, MsgAudio, sensor.Audio{RMS: 0.05, Decibels: -10})
	write(t, conn, MsgFace, sensor.Face{JawOpen: 0.9})

	waitFor(t, "feeds to attach", func() bool {
		return hub.Motion.Available() && hub.Loudness.Available() && hub.Face.Available()
	})
	if s.Clients() != 1 {
		t.Errorf("Clients() = %d, expected 1", s.Clients())
	}

	ctx := context.Background()
	if err := hub.Face.Start(ctx); err != nil {
		t.Fatalf("Face.Start: %v", err)
	}
	if err := hub.Motion.Start(ctx); err != nil {
		t.Fatalf("Motion.Start: %v", err)
	}
	if err := hub.Loudness.Start(ctx); err != nil {
		t.Fatalf("Loudness.Start: %v", err)
	}
	waitFor(t, "face reading", func() bool { return hub.Face.Latest().MouthOpen(sensor.MouthThreshold) })
	if !hub.Motion.Latest().Shaking() {
		t.Error("motion reading was not published")
	}
	if got := hub.Loudness.Latest().Level(); got != 0.8 {
		t.Errorf("loudness level = %v, expected 0.8", got)
	}

	conn.Close()
	waitFor(t, "feeds to detach", func() bool {
		return !hub.Motion.Available() && !hub.Loudness.Available() && !hub.Face.Available()
	})
}

func TestBadFrameDropsConnection(t *testing.T) {
	_, ts, hub := newTestServer(t)
	conn := dial(t, ts)

	write(t, conn, MsgFace, sensor.Face{JawOpen: 1})
	waitFor(t, "face attach", hub.Face.Available)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"t":"telepathy","p":{}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the server to close the connection")
	}
	waitFor(t, "face detach", func() bool { return !hub.Face.Available() })
}

func TestServeStopsWithContext(t *testing.T) {
	s := NewServer(sensor.NewHub(), log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServe() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
