package device

import (
	"sync"

	"github.com/eapache/queue"
)

// Stream is an ordered sequence of device tasks. A single worker goroutine
// drains the queue, so tasks run one after another in submission order.
type Stream struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	pending int
	idle    *sync.Cond
}

func newStream() *Stream {
	s := &Stream{tasks: queue.New()}
	s.cond = sync.NewCond(&s.mu)
	s.idle = sync.NewCond(&s.mu)

	// Start worker goroutine for stream
	go s.worker()
	return s
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for {
		s.mu.Lock()
		for s.tasks.Length() == 0 {
			s.cond.Wait()
		}
		task := s.tasks.Remove().(func())
		s.mu.Unlock()

		task()

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.idle.Broadcast()
		}
		s.mu.Unlock()
	}
}

// Submit appends a task to the stream.
func (s *Stream) Submit(task func()) {
	s.mu.Lock()
	s.pending++
	s.tasks.Add(task)
	s.cond.Signal()
	s.mu.Unlock()
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() {
	s.mu.Lock()
	for s.pending > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

// Pending returns the number of submitted tasks that have not finished.
func (s *Stream) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
