package posture

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type countingExtractor struct {
	FixedExtractor
	closed bool
}

func (c *countingExtractor) Close() error {
	c.closed = true
	return nil
}

func TestPoolGetReturn(t *testing.T) {
	var created []*countingExtractor

	pool, err := NewPool(3, func(i int) (Extractor, error) {
		ex := &countingExtractor{}
		created = append(created, ex)
		return ex, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, pool.Size())

	var wg sync.WaitGroup

	for i := 0; i < 12; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ex, err := pool.Get()
			if !assert.NoError(t, err) {
				return
			}

			_, _ = ex.Extract(gocv.Mat{})
			pool.Return(ex)
		}()
	}

	wg.Wait()

	total := 0
	for _, ex := range created {
		total += ex.Calls()
	}
	assert.Equal(t, 12, total)

	pool.Close()

	for _, ex := range created {
		assert.True(t, ex.closed)
	}

	_, err = pool.Get()
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolCreateFailureClosesSessions(t *testing.T) {
	first := &countingExtractor{}

	_, err := NewPool(2, func(i int) (Extractor, error) {
		if i == 0 {
			return first, nil
		}
		return nil, errors.New("npu unavailable")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session 1")
	assert.True(t, first.closed)
}

func TestPoolReturnAfterClose(t *testing.T) {
	ex := &countingExtractor{}
	pool := NewSinglePool(&FixedExtractor{})
	pool.Close()

	assert.NotPanics(t, func() { pool.Return(ex) })
	assert.True(t, ex.closed)
}
