// Package clock provides the blocking delay used by animations and the short
// spin used between shift register edges.
package clock

import (
	"context"
	"sync"
	"time"
)

// Sleeper blocks the caller for at least d, or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Wall sleeps on a runtime timer.
type Wall struct{}

func (Wall) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Delay is the millisecond/microsecond wait primitive handed to animations.
// A zero Delay sleeps on the wall clock.
type Delay struct {
	Sleeper Sleeper
}

func (d Delay) Ms(ctx context.Context, n int) error {
	return d.sleep(ctx, time.Duration(n)*time.Millisecond)
}

func (d Delay) Us(ctx context.Context, n int) error {
	return d.sleep(ctx, time.Duration(n)*time.Microsecond)
}

// For waits an arbitrary duration.
func (d Delay) For(ctx context.Context, dur time.Duration) error {
	return d.sleep(ctx, dur)
}

func (d Delay) sleep(ctx context.Context, dur time.Duration) error {
	if d.Sleeper == nil {
		return Wall{}.Sleep(ctx, dur)
	}
	return d.Sleeper.Sleep(ctx, dur)
}

// Spin busy-waits for d without yielding. Only meant for sub-microsecond to
// few-microsecond settle times inside the refresh path.
func Spin(d time.Duration) {
	if d <= 0 {
		return
	}
	end := time.Now().Add(d)
	for time.Now().Before(end) {
	}
}

// Fake records requested sleeps and returns immediately.
type Fake struct {
	// OnSleep, if set, runs on every Sleep before it returns.
	OnSleep func(d time.Duration)

	mu      sync.Mutex
	calls   int
	elapsed time.Duration
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.calls++
	f.elapsed += d
	f.mu.Unlock()
	if f.OnSleep != nil {
		f.OnSleep(d)
	}
	return ctx.Err()
}

// Calls returns how many sleeps were requested.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Elapsed returns the total simulated time slept.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}
