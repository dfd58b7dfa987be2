package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := New()
	var computations int32

	compute := func() (interface{}, error) {
		atomic.AddInt32(&computations, 1)
		time.Sleep(50 * time.Millisecond) // simular consulta cara
		return "snapshot", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := c.GetOrCompute("dashboard:t1", DefaultTTL, nil, compute)
			assert.NoError(t, err)
			assert.Equal(t, "snapshot", value)
		}()
	}
	wg.Wait()

	// Cache frío con 8 llamadas concurrentes: un solo cálculo real
	assert.Equal(t, int32(1), atomic.LoadInt32(&computations))
}

func TestGetOrComputeExpiryRecomputes(t *testing.T) {
	c := New()
	var computations int32

	compute := func() (interface{}, error) {
		atomic.AddInt32(&computations, 1)
		return "v", nil
	}

	_, err := c.GetOrCompute("k", 20*time.Millisecond, nil, compute)
	require.NoError(t, err)

	// Dentro del TTL no recalcula
	_, err = c.GetOrCompute("k", 20*time.Millisecond, nil, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&computations))

	time.Sleep(30 * time.Millisecond)

	_, err = c.GetOrCompute("k", 20*time.Millisecond, nil, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&computations))
}

func TestInvalidateTagForcesRecompute(t *testing.T) {
	c := New()
	var computations int32

	compute := func() (interface{}, error) {
		atomic.AddInt32(&computations, 1)
		return "v", nil
	}

	_, err := c.GetOrCompute("dashboard:t1", time.Hour, []string{"tenant:t1"}, compute)
	require.NoError(t, err)

	c.InvalidateTag("tenant:t1")

	// Aunque el TTL era de una hora, la etiqueta lo tiró
	_, err = c.GetOrCompute("dashboard:t1", time.Hour, []string{"tenant:t1"}, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&computations))
}

func TestInvalidateTagOnlyTouchesTaggedKeys(t *testing.T) {
	c := New()

	c.SetWithTags("a", 1, time.Hour, []string{"tenant:t1"})
	c.SetWithTags("b", 2, time.Hour, []string{"tenant:t2"})

	c.InvalidateTag("tenant:t1")

	_, foundA := c.Get("a")
	_, foundB := c.Get("b")
	assert.False(t, foundA)
	assert.True(t, foundB)
}

func TestComputeErrorIsNotCached(t *testing.T) {
	c := New()
	var computations int32

	failing := func() (interface{}, error) {
		atomic.AddInt32(&computations, 1)
		return nil, errors.New("consulta fallida")
	}

	_, err := c.GetOrCompute("k", DefaultTTL, nil, failing)
	assert.Error(t, err)

	_, err = c.GetOrCompute("k", DefaultTTL, nil, failing)
	assert.Error(t, err)

	// El error no se cacheó: cada llamada volvió a intentar
	assert.Equal(t, int32(2), atomic.LoadInt32(&computations))
}

func TestComputeErrorLeavesPriorValue(t *testing.T) {
	c := New()
	c.Set("k", "previo", time.Hour)

	// Valor vigente: ni siquiera se invoca computeFn
	value, err := c.GetOrCompute("k", time.Hour, nil, func() (interface{}, error) {
		return nil, errors.New("no debería ejecutarse")
	})
	require.NoError(t, err)
	assert.Equal(t, "previo", value)
}

func TestDeleteExpiredCleansTagIndex(t *testing.T) {
	c := New()
	c.SetWithTags("k", 1, -time.Second, []string{"tenant:t1"})

	c.DeleteExpired()

	_, found := c.Get("k")
	assert.False(t, found)
}
