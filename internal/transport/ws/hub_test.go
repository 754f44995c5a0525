package ws

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
)

func receive(t *testing.T, conn *Connection) (Message, bool) {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		if !ok {
			return Message{}, false
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		return msg, true
	case <-time.After(2 * time.Second):
		t.Fatalf("no message for session %s", conn.SessionID)
		return Message{}, false
	}
}

func TestHubPublishReachesOnlyTheSession(t *testing.T) {
	t.Parallel()
	h := NewHub(zap.NewNop())
	defer h.Stop()

	a1 := NewConnection("s1", "alice")
	a2 := NewConnection("s1", "alice")
	other := NewConnection("s2", "bob")
	h.Register(a1)
	h.Register(a2)
	h.Register(other)

	if n := h.Listeners("s1"); n != 2 {
		t.Fatalf("listeners(s1) = %d, want 2", n)
	}

	h.Publish("s1", string(MsgNextQuestion), map[string]string{"question": "Why?"})

	for _, conn := range []*Connection{a1, a2} {
		msg, ok := receive(t, conn)
		if !ok || msg.Type != MsgNextQuestion {
			t.Fatalf("message = %+v, open %v", msg, ok)
		}
		var payload map[string]string
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload["question"] != "Why?" {
			t.Fatalf("payload = %s (%v)", msg.Payload, err)
		}
	}

	select {
	case data := <-other.Send:
		t.Fatalf("other session received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubCloseSessionAfterPendingEvents(t *testing.T) {
	t.Parallel()
	h := NewHub(zap.NewNop())
	defer h.Stop()

	conn := NewConnection("s1", "alice")
	h.Register(conn)

	h.Publish("s1", string(MsgSessionDeleted), map[string]string{"session_id": "s1"})
	h.CloseSession("s1")

	msg, ok := receive(t, conn)
	if !ok || msg.Type != MsgSessionDeleted {
		t.Fatalf("message = %+v, open %v", msg, ok)
	}
	if _, ok := receive(t, conn); ok {
		t.Fatal("connection still open after CloseSession")
	}
	if n := h.Listeners("s1"); n != 0 {
		t.Fatalf("listeners = %d after close", n)
	}

	// Unregistering a dropped connection must not close its channel twice.
	h.Unregister(conn)
}

func TestHubUnregisterAndStop(t *testing.T) {
	t.Parallel()
	h := NewHub(zap.NewNop())

	gone := NewConnection("s1", "alice")
	stay := NewConnection("s1", "alice")
	h.Register(gone)
	h.Register(stay)
	h.Unregister(gone)

	if _, ok := receive(t, gone); ok {
		t.Fatal("unregistered connection still open")
	}
	if n := h.Listeners("s1"); n != 1 {
		t.Fatalf("listeners = %d, want 1", n)
	}

	h.Stop()
	h.Stop()
	if _, ok := receive(t, stay); ok {
		t.Fatal("connection open after Stop")
	}

	late := NewConnection("s1", "alice")
	h.Register(late)
	if _, ok := receive(t, late); ok {
		t.Fatal("register after Stop kept the connection open")
	}
	h.Publish("s1", string(MsgError), "ignored")
}

func TestEncode(t *testing.T) {
	t.Parallel()
	data, err := Encode(MsgAnswerScored, map[string]float64{"score": 3.5})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"type":"answer_scored","payload":{"score":3.5}}`
	if string(data) != want {
		t.Fatalf("Encode = %s, want %s", data, want)
	}

	if _, err := Encode(MsgError, func() {}); err == nil {
		t.Fatal("Encode accepted an unencodable payload")
	}
}
