package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessor(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		wantErr   bool
	}{
		{name: "min", batchSize: MinBatchSize},
		{name: "max", batchSize: MaxBatchSize},
		{name: "zero", batchSize: 0, wantErr: true},
		{name: "too large", batchSize: MaxBatchSize + 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProcessor[int](tt.batchSize)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidBatchSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.batchSize, p.BatchSize())
		})
	}
}

func TestCalculateBatches(t *testing.T) {
	p, err := NewProcessor[string](3)
	require.NoError(t, err)

	assert.Nil(t, p.CalculateBatches(0))
	assert.Equal(t, [][2]int{{0, 3}}, p.CalculateBatches(3))
	assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 7}}, p.CalculateBatches(7))
}

func TestProcess_StopsOnError(t *testing.T) {
	p, err := NewProcessor[int](2)
	require.NoError(t, err)

	var seen [][]int
	boom := errors.New("boom")
	err = p.Process(context.Background(), []int{1, 2, 3, 4, 5}, func(_ context.Context, batch []int, idx int) error {
		seen = append(seen, batch)
		if idx == 1 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, seen)
}

func TestProcess_Cancelled(t *testing.T) {
	p, err := NewProcessor[int](DefaultBatchSize)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err = p.Process(ctx, []int{1}, func(context.Context, []int, int) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProcess_NilCallback(t *testing.T) {
	p, err := NewProcessor[int](DefaultBatchSize)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Process(context.Background(), []int{1}, nil), ErrNilCallback)
}

func TestCollect(t *testing.T) {
	p, err := NewProcessor[string](2)
	require.NoError(t, err)

	var calls int
	out, err := Collect(context.Background(), p, []string{"a", "b", "c"}, func(_ context.Context, batch []string) ([]int, error) {
		calls++
		return []int{len(batch)}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{2, 1}, out)

	out, err = Collect(context.Background(), p, []string{"a", "b", "c"}, func(_ context.Context, batch []string) ([]int, error) {
		if batch[0] == "c" {
			return nil, errors.New("lookup failed")
		}
		return []int{1}, nil
	})
	require.Error(t, err)
	assert.Nil(t, out)
}
