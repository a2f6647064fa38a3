package parallel

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	for _, cfg := range []Config{
		DefaultConfig(),
		IOConfig(),
		{Enabled: true, NumWorkers: 3, MinChunkSize: 1},
		{Enabled: false},
	} {
		t.Run(fmt.Sprintf("%+v", cfg), func(t *testing.T) {
			var counter int64
			seen := make([]int32, 1000)
			For(len(seen), func(i int) {
				atomic.AddInt64(&counter, 1)
				atomic.AddInt32(&seen[i], 1)
			}, cfg)
			assert.Equal(t, int64(len(seen)), counter)
			for i, s := range seen {
				require.Equal(t, int32(1), s, "index %d", i)
			}
		})
	}
}

func TestFor_SmallRange(t *testing.T) {
	// Small work units fall back to sequential execution, in order.
	cfg := DefaultConfig()
	var order []int
	For(cfg.MinChunkSize-1, func(i int) {
		order = append(order, i)
	}, cfg)
	require.Len(t, order, cfg.MinChunkSize-1)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestForErr(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	var attempted int64
	err := ForErr(100, func(i int) error {
		atomic.AddInt64(&attempted, 1)
		if i == 17 || i == 80 {
			return fmt.Errorf("item %d failed", i)
		}
		return nil
	}, cfg)
	assert.EqualError(t, err, "item 17 failed")
	assert.Equal(t, int64(100), attempted)

	assert.NoError(t, ForErr(0, func(int) error { return nil }, cfg))
}

func BenchmarkFor(b *testing.B) {
	n := 10000
	for _, tc := range []struct {
		name string
		cfg  Config
	}{
		{"parallel", DefaultConfig()},
		{"sequential", Config{Enabled: false}},
	} {
		b.Run(tc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				var sum int64
				For(n, func(i int) {
					atomic.AddInt64(&sum, int64(i))
				}, tc.cfg)
			}
		})
	}
}
