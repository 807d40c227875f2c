package device

import (
	"sync"
	"time"
)

// Event marks a point in the default stream. Recording an event enqueues a
// timestamp task; the event completes when the stream reaches it.
type Event struct {
	mu        sync.Mutex
	done      chan struct{}
	at        time.Time
	recorded  bool
	destroyed bool
}

// EventCreate creates an event that has not been recorded.
func EventCreate() (*Event, error) {
	return &Event{}, nil
}

// EventRecord enqueues ev on the default stream, replacing any earlier
// recording.
func EventRecord(ev *Event) error {
	return defaultContext.EventRecord(ev)
}

// EventSynchronize blocks until ev has been reached by the stream.
func EventSynchronize(ev *Event) error {
	return defaultContext.EventSynchronize(ev)
}

// EventQuery reports whether ev has completed. An incomplete event returns
// an ErrorNotReady error.
func EventQuery(ev *Event) error {
	if err := ev.valid("EventQuery"); err != nil {
		return err
	}
	ev.mu.Lock()
	done := ev.done
	ev.mu.Unlock()
	select {
	case <-done:
		return nil
	default:
		return ErrNotReady
	}
}

// EventElapsedTime returns the milliseconds between two completed events.
func EventElapsedTime(start, stop *Event) (float32, error) {
	for _, ev := range []*Event{start, stop} {
		if err := EventQuery(ev); err != nil {
			return 0, err
		}
	}
	start.mu.Lock()
	t0 := start.at
	start.mu.Unlock()
	stop.mu.Lock()
	t1 := stop.at
	stop.mu.Unlock()
	return float32(t1.Sub(t0).Seconds() * 1e3), nil
}

// EventDestroy releases ev. Destroying an event twice is an error.
func EventDestroy(ev *Event) error {
	if ev == nil || ev.isDestroyed() {
		return invalidHandle("EventDestroy")
	}
	ev.mu.Lock()
	ev.destroyed = true
	ev.mu.Unlock()
	return nil
}

// EventRecord enqueues ev on the context's stream.
func (ctx *Context) EventRecord(ev *Event) error {
	if ev == nil || ev.isDestroyed() {
		return invalidHandle("EventRecord")
	}
	done := make(chan struct{})
	ev.mu.Lock()
	ev.done = done
	ev.recorded = true
	ev.mu.Unlock()

	ctx.stream.Submit(func() {
		ev.mu.Lock()
		ev.at = time.Now()
		ev.mu.Unlock()
		close(done)
	})
	return nil
}

// EventSynchronize blocks until ev completes and reports any kernel fault
// that happened before it.
func (ctx *Context) EventSynchronize(ev *Event) error {
	if err := ev.valid("EventSynchronize"); err != nil {
		return err
	}
	ev.mu.Lock()
	done := ev.done
	ev.mu.Unlock()
	<-done
	return ctx.stickyError()
}

func (ev *Event) isDestroyed() bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.destroyed
}

// valid checks that ev exists, is alive and has been recorded.
func (ev *Event) valid(op string) error {
	if ev == nil {
		return invalidHandle(op)
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if ev.destroyed || !ev.recorded {
		return invalidHandle(op)
	}
	return nil
}

func invalidHandle(op string) error {
	return &Error{
		Type:    ErrTypeInvalidArg,
		Code:    ErrorInvalidResourceHandle,
		Op:      op,
		Message: "invalid event handle",
	}
}
