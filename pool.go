package posture

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPoolClosed is returned by Pool.Get once the pool has been closed
var ErrPoolClosed = errors.New("extractor pool is closed")

// Pool is a simple pool of Extractor sessions.  Each evaluation borrows its
// own session so extractors that are not safe for concurrent use can serve
// concurrent callers
type Pool struct {
	// pool of extractor sessions
	sessions chan Extractor
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a pool of size sessions, calling newFn with the session
// index to create each one
func NewPool(size int, newFn func(i int) (Extractor, error)) (*Pool, error) {

	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		sessions: make(chan Extractor, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		ex, err := newFn(i)

		if err != nil {
			// close any sessions that may have been created before receiving
			// the error
			p.Close()
			return nil, fmt.Errorf("error creating extractor session %d: %w", i, err)
		}

		// attach to pool
		p.Return(ex)
	}

	return p, nil
}

// NewSinglePool wraps one extractor in a pool of size 1
func NewSinglePool(ex Extractor) *Pool {
	p := &Pool{
		sessions: make(chan Extractor, 1),
		size:     1,
	}

	p.Return(ex)

	return p
}

// Get takes a session from the pool, blocking until one is available
func (p *Pool) Get() (Extractor, error) {

	ex, ok := <-p.sessions

	if !ok {
		return nil, ErrPoolClosed
	}

	return ex, nil
}

// Return a session to the pool
func (p *Pool) Return(ex Extractor) {
	defer func() {
		// sending on a closed pool, release the session instead
		if recover() != nil {
			_ = ex.Close()
		}
	}()

	select {
	case p.sessions <- ex:
	default:
		// pool is full
		_ = ex.Close()
	}
}

// Size returns the number of sessions the pool was created with
func (p *Pool) Size() int {
	return p.size
}

// Close the pool and all sessions in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.sessions)

		// close all sessions
		for next := range p.sessions {
			_ = next.Close()
		}
	})
}
