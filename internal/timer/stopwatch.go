// Package timer implements the shot stopwatch.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultInterval is the tick resolution of the stopwatch.
const DefaultInterval = 100 * time.Millisecond

// Stopwatch counts elapsed time in whole ticks while running.
//
// It owns at most one ticker goroutine. Stop, Reset and Close cancel that
// goroutine and wait for it to exit, so elapsed never changes after they
// return.
type Stopwatch struct {
	interval time.Duration

	mu      sync.Mutex
	elapsed time.Duration
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[chan time.Duration]struct{}
	closed  bool
	quit    chan struct{}
}

// New creates a stopped stopwatch. A non-positive interval uses DefaultInterval.
func New(interval time.Duration) *Stopwatch {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Stopwatch{
		interval: interval,
		subs:     make(map[chan time.Duration]struct{}),
		quit:     make(chan struct{}),
	}
}

// Start begins counting from the current elapsed value. Starting a running
// or closed stopwatch does nothing.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.closed {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	log.Debug().Dur("elapsed", s.elapsed).Msg("Stopwatch started")
}

func (s *Stopwatch) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			// cancel is called under mu, so this check is authoritative
			if ctx.Err() != nil {
				s.mu.Unlock()
				return
			}
			s.elapsed += s.interval
			s.publishLocked()
			s.mu.Unlock()
		}
	}
}

// Stop pauses the stopwatch, keeping the elapsed time.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	done := s.haltLocked()
	s.mu.Unlock()
	wait(done)
}

// Reset stops the stopwatch and zeroes the elapsed time.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	done := s.haltLocked()
	s.elapsed = 0
	s.publishLocked()
	s.mu.Unlock()
	wait(done)
}

// Close stops the stopwatch for good and closes all subscriber channels.
func (s *Stopwatch) Close() {
	s.mu.Lock()
	done := s.haltLocked()
	if !s.closed {
		s.closed = true
		close(s.quit)
	}
	for ch := range s.subs {
		close(ch)
		delete(s.subs, ch)
	}
	s.mu.Unlock()
	wait(done)
}

// haltLocked cancels the ticker goroutine and returns its done channel.
func (s *Stopwatch) haltLocked() chan struct{} {
	if !s.running {
		return nil
	}
	s.cancel()
	s.running = false
	s.cancel = nil
	done := s.done
	s.done = nil
	return done
}

func wait(done chan struct{}) {
	if done != nil {
		<-done
	}
}

// Running reports whether the stopwatch is counting.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Elapsed returns the time counted so far.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Seconds returns the elapsed time in seconds, as recorded on a shot.
func (s *Stopwatch) Seconds() float64 {
	return s.Elapsed().Seconds()
}

// Subscribe returns a channel that receives the elapsed time after every
// tick and reset. Slow readers only see the latest value. The channel is
// closed when ctx is done or the stopwatch is closed.
func (s *Stopwatch) Subscribe(ctx context.Context) <-chan time.Duration {
	ch := make(chan time.Duration, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch
	}
	s.subs[ch] = struct{}{}
	ch <- s.elapsed
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.quit:
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}()

	return ch
}

func (s *Stopwatch) publishLocked() {
	for ch := range s.subs {
		// drop the stale value, if any
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.elapsed:
		default:
		}
	}
}
