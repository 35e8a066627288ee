package originfirewall

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestShouldRunRequiresIntervalAndDynamicSource(t *testing.T) {
	if ShouldRun(0, Config{AllowPrivateIP: true}) {
		t.Fatal("zero interval must not run the refresher")
	}
	if ShouldRun(time.Minute, Config{}) {
		t.Fatal("static-only config must not run the refresher")
	}
	if !ShouldRun(time.Minute, Config{AllowPrivateIP: true}) {
		t.Fatal("interval plus dynamic source must run the refresher")
	}
}

func TestRefresherSwapsAndStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	current := map[string]struct{}{"old.example": {}}

	r := NewRefresher(
		Config{BindHost: "new.example"},
		5*time.Millisecond,
		func() map[string]struct{} {
			mu.Lock()
			defer mu.Unlock()
			cp := make(map[string]struct{}, len(current))
			for k := range current {
				cp[k] = struct{}{}
			}
			return cp
		},
		func(next map[string]struct{}) {
			mu.Lock()
			defer mu.Unlock()
			current = next
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	_, hasNew := current["new.example"]
	mu.Unlock()
	if !hasNew {
		t.Fatal("expected refreshed set to include the new bind host")
	}
}
