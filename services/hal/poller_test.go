package hal

import (
	"context"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan PollReq, within time.Duration) (PollReq, bool) {
	t.Helper()
	select {
	case r := <-ch:
		return r, true
	case <-time.After(within):
		return PollReq{}, false
	}
}

func TestPollerFires(t *testing.T) {
	ch := make(chan PollReq, 4)
	p := NewPoller(ch)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Upsert("psu", "total_power", 5*time.Millisecond, 0)
	r, ok := recv(t, ch, time.Second)
	if !ok {
		t.Fatal("no poll request")
	}
	if r.Device != "psu" || r.Attr != "total_power" || r.Every != 5*time.Millisecond {
		t.Fatalf("unexpected request %+v", r)
	}
	if _, ok := recv(t, ch, time.Second); !ok {
		t.Fatal("schedule was not re-armed")
	}
}

func TestPollerIgnoresNonPositiveInterval(t *testing.T) {
	p := NewPoller(make(chan PollReq, 1))
	p.Upsert("psu", "total_power", 0, 0)
	p.Upsert("", "total_power", time.Second, 0)
	if n := p.Len(); n != 0 {
		t.Fatalf("len = %d, want 0", n)
	}
}

func TestPollerUpsertReplaces(t *testing.T) {
	p := NewPoller(make(chan PollReq, 1))
	p.Upsert("psu", "total_power", time.Hour, 0)
	p.Upsert("psu", "total_power", time.Minute, time.Second)
	if n := p.Len(); n != 1 {
		t.Fatalf("len = %d, want 1", n)
	}
	if it := p.items[pollKey{"psu", "total_power"}]; it.every != time.Minute || it.jitter != time.Second {
		t.Fatalf("item not updated: %+v", it)
	}
}

func TestPollerStop(t *testing.T) {
	ch := make(chan PollReq, 4)
	p := NewPoller(ch)
	p.Upsert("a", "x", time.Hour, 0)
	p.Upsert("a", "y", time.Hour, 0)
	p.Upsert("b", "x", 5*time.Millisecond, 0)

	p.Stop("a", "x")
	if n := p.Len(); n != 2 {
		t.Fatalf("len = %d, want 2", n)
	}
	p.StopDevice("b")
	if n := p.Len(); n != 1 {
		t.Fatalf("len = %d, want 1", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)
	if r, ok := recv(t, ch, 50*time.Millisecond); ok {
		t.Fatalf("stopped schedule fired: %+v", r)
	}
}

func TestPollerJitterBounds(t *testing.T) {
	p := NewPoller(nil)
	for i := 0; i < 100; i++ {
		d := p.jittered(10*time.Millisecond, 2*time.Millisecond)
		if d < 10*time.Millisecond || d > 12*time.Millisecond {
			t.Fatalf("jittered = %v", d)
		}
	}
}
