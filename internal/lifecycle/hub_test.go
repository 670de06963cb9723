package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunPublishesStartedThenSucceeded(t *testing.T) {
	hub := NewHub(16)
	got, err := Run(context.Background(), hub, "cart", "fetch", func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("unexpected result: got=%d err=%v", got, err)
	}
	history := hub.History()
	if len(history) != 2 {
		t.Fatalf("unexpected event count: got=%d want=2", len(history))
	}
	if history[0].Name() != "cart/fetch/started" || history[1].Name() != "cart/fetch/succeeded" {
		t.Fatalf("unexpected events: %q %q", history[0].Name(), history[1].Name())
	}
	if history[1].Value.(int) != 7 {
		t.Fatalf("unexpected event value: %v", history[1].Value)
	}
	if history[0].Seq >= history[1].Seq {
		t.Fatalf("sequence must increase: %d %d", history[0].Seq, history[1].Seq)
	}
}

func TestRunPublishesFailedWithReason(t *testing.T) {
	hub := NewHub(16)
	boom := errors.New("boom")
	_, err := Run(context.Background(), hub, "orders", "update", func(context.Context) (struct{}, error) {
		return struct{}{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}
	history := hub.History()
	last := history[len(history)-1]
	if last.Phase != Failed || !errors.Is(last.Err, boom) {
		t.Fatalf("unexpected last event: %+v", last)
	}
}

func TestSubscribeReplaysFromSequence(t *testing.T) {
	hub := NewHub(2)
	hub.Publish(Event{Store: "s", Action: "a", Phase: Succeeded})
	second := hub.Publish(Event{Store: "s", Action: "b", Phase: Succeeded})
	hub.Publish(Event{Store: "s", Action: "c", Phase: Succeeded})

	sub := hub.Subscribe(second.Seq - 1)
	defer sub.Close()
	if len(sub.Replay) != 2 {
		t.Fatalf("unexpected replay size: got=%d want=2", len(sub.Replay))
	}
	if sub.Replay[0].Action != "b" {
		t.Fatalf("unexpected first replay action: %q", sub.Replay[0].Action)
	}

	hub.Publish(Event{Store: "s", Action: "d", Phase: Started})
	ev := <-sub.Events()
	if ev.Action != "d" {
		t.Fatalf("unexpected live event: %q", ev.Action)
	}
}

func TestSubscribeFiltersByStore(t *testing.T) {
	hub := NewHub(8)
	Changed(hub, "cart", "add_item", nil)
	Changed(hub, "orders", "clear", nil)

	sub := hub.Subscribe(0, "orders")
	defer sub.Close()
	if len(sub.Replay) != 1 || sub.Replay[0].Store != "orders" {
		t.Fatalf("unexpected replay: %+v", sub.Replay)
	}

	Changed(hub, "cart", "clear", nil)
	Changed(hub, "orders", "fetchAll", nil)
	ev := <-sub.Events()
	if ev.Store != "orders" || ev.Action != "fetchAll" {
		t.Fatalf("unexpected live event: %s", ev.Name())
	}
}

func TestSlowSubscriberMissesWithoutBlocking(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe(0)
	for i := 0; i < 130; i++ {
		Changed(hub, "cart", "add_item", nil)
	}
	if got := sub.Missed(); got != 2 {
		t.Fatalf("unexpected missed count: got=%d want=2", got)
	}
	if got := len(hub.History()); got != 4 {
		t.Fatalf("unexpected history size: got=%d want=4", got)
	}
	if got := hub.History()[3].Seq; got != 130 {
		t.Fatalf("unexpected newest sequence: got=%d want=130", got)
	}

	sub.Close()
	sub.Close()
	drained := 0
	for range sub.Events() {
		drained++
	}
	if drained != 128 {
		t.Fatalf("unexpected buffered events: got=%d want=128", drained)
	}
}

func TestNilHubReadsAreEmpty(t *testing.T) {
	var hub *Hub
	if hub.History() != nil || hub.LastSeq() != 0 {
		t.Fatal("nil hub must have no history")
	}
	sub := hub.Subscribe(0)
	if _, ok := <-sub.Events(); ok {
		t.Fatal("nil hub subscription must be closed")
	}
	sub.Close()
	if sub.Missed() != 0 {
		t.Fatal("nil hub subscription cannot miss events")
	}
}

func TestNilHubIsSafeForRun(t *testing.T) {
	var hub *Hub
	got, err := Run(context.Background(), hub, "s", "a", func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("unexpected result: got=%q err=%v", got, err)
	}
}

func TestRegistererCountsPhases(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub := NewHub(8, WithRegisterer(reg, "test"))
	Changed(hub, "cart", "add_item", nil)
	Changed(hub, "cart", "add_item", nil)
	if got := testutil.ToFloat64(hub.actions.WithLabelValues("cart", "add_item", "succeeded")); got != 2 {
		t.Fatalf("unexpected counter: got=%v want=2", got)
	}
}
