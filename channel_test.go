package intelinfo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	intelinfo "github.com/intelinfo/intelinfo-go"
	"github.com/intelinfo/intelinfo-go/intelinfotest"
	"github.com/intelinfo/intelinfo-go/utils/stream"
)

// waitNext advances the stream with a deadline so a regression cannot hang
// the test binary.
func waitNext(t *testing.T, s *stream.Stream[intelinfo.PushEvent]) (intelinfo.PushEvent, bool) {
	t.Helper()
	type result struct {
		event intelinfo.PushEvent
		ok    bool
	}
	resC := make(chan result, 1)
	go func() {
		ok := s.Next()
		resC <- result{event: s.Current(), ok: ok}
	}()
	select {
	case res := <-resC:
		return res.event, res.ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream event")
		return intelinfo.PushEvent{}, false
	}
}

func TestLiveDeliversEventsInOrder(t *testing.T) {
	srv := intelinfotest.NewServer()
	defer srv.Close()

	client := intelinfo.New(intelinfo.Options{BaseURL: srv.URL()})
	ch, err := client.Live(context.Background())
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}
	defer ch.Close()

	if !srv.WaitForClients(1, time.Second) {
		t.Fatal("live connection never registered")
	}

	first := intelinfo.NewAnnouncementEvent(intelinfo.Announcement{ID: 10, Kind: intelinfo.AnnouncementText, Content: "one"})
	second := intelinfo.DeleteAnnouncementEvent(10)
	srv.Broadcast(first)
	srv.Broadcast(second)

	events := ch.Events()
	got1, ok := waitNext(t, events)
	if !ok {
		t.Fatalf("stream ended early: %v", events.Err())
	}
	got2, ok := waitNext(t, events)
	if !ok {
		t.Fatalf("stream ended early: %v", events.Err())
	}

	if diff := cmp.Diff(first, got1); diff != "" {
		t.Fatalf("first event mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(second, got2); diff != "" {
		t.Fatalf("second event mismatch (-want +got):\n%s", diff)
	}
}

func TestLiveSkipsMalformedFrames(t *testing.T) {
	srv := intelinfotest.NewServer()
	defer srv.Close()

	client := intelinfo.New(intelinfo.Options{BaseURL: srv.URL()})
	ch, err := client.Live(context.Background())
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}
	defer ch.Close()

	if !srv.WaitForClients(1, time.Second) {
		t.Fatal("live connection never registered")
	}

	srv.BroadcastRaw([]byte("this is not json"))
	valid := intelinfo.NewAnnouncementEvent(intelinfo.Announcement{ID: 7, Kind: intelinfo.AnnouncementText, Content: "still alive"})
	srv.Broadcast(valid)

	got, ok := waitNext(t, ch.Events())
	if !ok {
		t.Fatalf("stream ended after malformed frame: %v", ch.Events().Err())
	}
	if diff := cmp.Diff(valid, got); diff != "" {
		t.Fatalf("expected the valid frame after the malformed one (-want +got):\n%s", diff)
	}
}

func TestLiveCloseStopsDelivery(t *testing.T) {
	srv := intelinfotest.NewServer()
	defer srv.Close()

	client := intelinfo.New(intelinfo.Options{BaseURL: srv.URL()})
	ch, err := client.Live(context.Background())
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}

	if !srv.WaitForClients(1, time.Second) {
		t.Fatal("live connection never registered")
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	// Close is idempotent.
	if err := ch.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	srv.Broadcast(intelinfo.NewAnnouncementEvent(intelinfo.Announcement{ID: 1}))

	if _, ok := waitNext(t, ch.Events()); ok {
		t.Fatal("received event after Close")
	}
	if err := ch.Events().Err(); err != nil {
		t.Fatalf("deliberate teardown surfaced an error: %v", err)
	}
}

func TestLiveDialFailureIsNetworkError(t *testing.T) {
	hs := httptest.NewServer(http.NewServeMux())
	base := hs.URL
	hs.Close()

	client := intelinfo.New(intelinfo.Options{BaseURL: base})
	_, err := client.Live(context.Background())
	if err == nil {
		t.Fatal("expected dial against closed server to fail")
	}
	var netErr *intelinfo.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if netErr.BaseURL != base {
		t.Fatalf("NetworkError.BaseURL = %q, want %q", netErr.BaseURL, base)
	}
}

func TestLiveServerShutdownEndsStream(t *testing.T) {
	srv := intelinfotest.NewServer()

	client := intelinfo.New(intelinfo.Options{BaseURL: srv.URL()})
	ch, err := client.Live(context.Background())
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}
	defer ch.Close()

	if !srv.WaitForClients(1, time.Second) {
		t.Fatal("live connection never registered")
	}

	srv.Close()

	if _, ok := waitNext(t, ch.Events()); ok {
		t.Fatal("received event after server shutdown")
	}
	if ch.Events().Err() == nil {
		t.Fatal("abnormal closure did not surface through Err")
	}
}

func TestLiveFeedReconciliation(t *testing.T) {
	srv := intelinfotest.NewServer()
	defer srv.Close()
	srv.SeedAnnouncements(
		intelinfo.Announcement{ID: 2, Kind: intelinfo.AnnouncementText, Content: "two"},
		intelinfo.Announcement{ID: 1, Kind: intelinfo.AnnouncementText, Content: "one"},
	)

	client := intelinfo.New(intelinfo.Options{BaseURL: srv.URL()})
	ctx := context.Background()

	initial, err := client.Announcements.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	feed := intelinfo.NewFeed()
	feed.Seed(initial)

	ch, err := client.Live(ctx)
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}
	defer ch.Close()
	if !srv.WaitForClients(1, time.Second) {
		t.Fatal("live connection never registered")
	}

	created, err := client.Announcements.Create(ctx, intelinfo.CreateAnnouncementInput{
		Kind:    intelinfo.AnnouncementText,
		Content: "three",
	}, srv.Token())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	event, ok := waitNext(t, ch.Events())
	if !ok {
		t.Fatalf("stream ended early: %v", ch.Events().Err())
	}
	feed.Apply(event)

	items := feed.Items()
	if len(items) != 3 || items[0].ID != created.ID {
		t.Fatalf("expected created announcement at the head, got %+v", items)
	}
}
