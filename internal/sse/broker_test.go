package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "document.loaded", Data: map[string]string{"path": "a.docx"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: document.loaded") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"a.docx"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishLibraryEvent_Throttle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	// First event triggers library.changed, the second one is throttled.
	b.PublishLibraryEvent("created", "a.docx")
	b.PublishLibraryEvent("updated", "b.docx")
	b.PublishLibraryEvent("bogus", "c.docx")

	time.Sleep(50 * time.Millisecond)
	changed := 0
	var docs []string
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "event: library.changed") {
				changed++
			} else {
				docs = append(docs, s)
			}
		default:
			break loop
		}
	}

	if len(docs) != 2 {
		t.Fatalf("document events = %q, want 2", docs)
	}
	if !strings.Contains(docs[0], "event: library.document.created") || !strings.Contains(docs[1], "event: library.document.updated") {
		t.Errorf("document events = %q", docs)
	}
	if changed != 1 {
		t.Errorf("library.changed events = %d, want 1 (throttled)", changed)
	}
}

func TestPublishSessionEvent(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.PublishSessionEvent("search.cleared", "s1", "")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: search.cleared") || !strings.Contains(s, `"session":"s1"`) {
			t.Errorf("unexpected message %q", s)
		}
		if strings.Contains(s, `"path"`) {
			t.Errorf("empty path should be omitted: %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishSessionEvent("document.reloaded", "s1", "x.docx")
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: document.reloaded") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "document.loaded", Data: map[string]string{"path": "x.docx"}})
	b.PublishLibraryEvent("updated", "x.docx")
	b.PublishSessionEvent("document.unloaded", "s1", "x.docx")
}

func TestSessionFilter(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	mine := b.Subscribe("s1")
	defer b.Unsubscribe(mine)
	all := b.Subscribe("")
	defer b.Unsubscribe(all)

	b.PublishSessionEvent("document.loaded", "s2", "b.docx")
	b.PublishSessionEvent("document.loaded", "s1", "a.docx")
	b.PublishLibraryEvent("deleted", "c.docx")
	time.Sleep(50 * time.Millisecond)

	drain := func(ch chan []byte) []string {
		var out []string
		for {
			select {
			case msg := <-ch:
				out = append(out, string(msg))
			default:
				return out
			}
		}
	}

	got := drain(mine)
	if len(got) != 3 {
		t.Fatalf("filtered client got %d events, want 3: %q", len(got), got)
	}
	if strings.Contains(got[0], `"session":"s2"`) {
		t.Errorf("filtered client received another session's event: %q", got[0])
	}
	if n := len(drain(all)); n != 4 {
		t.Errorf("unfiltered client got %d events, want 4", n)
	}
}

func TestEventIDsIncrease(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "a", Data: 1})
	b.Publish(Event{Type: "b", Data: 2})
	for _, want := range []string{"id: 1\n", "id: 2\n"} {
		select {
		case msg := <-ch:
			if !strings.HasPrefix(string(msg), want) {
				t.Errorf("message %q does not start with %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}
