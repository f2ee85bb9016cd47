// Package batch splits item sets into fixed-size chunks and processes them in
// order. It bounds request sizes for lookups that accept a list of keys, such
// as directory searches by user identifier.
package batch

import (
	"context"
	"errors"
	"fmt"
)

// Batch size limits.
const (
	DefaultBatchSize = 100
	MinBatchSize     = 1
	MaxBatchSize     = 1000
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// Callback processes one batch. batchIndex is 0-based.
type Callback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// CollectCallback processes one batch and returns its results.
type CollectCallback[T, R any] func(ctx context.Context, batch []T) ([]R, error)

// Processor splits items into batches of a fixed size.
type Processor[T any] struct {
	batchSize int
}

// NewProcessor creates a processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize}, nil
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int {
	return p.batchSize
}

// Process runs callback for each batch in order and stops on the first error.
// An empty item set is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback Callback[T]) error {
	if callback == nil {
		return ErrNilCallback
	}

	for i, bounds := range p.CalculateBatches(len(items)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(ctx, items[bounds[0]:bounds[1]], i); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}
	}
	return nil
}

// CalculateBatches returns [start, end) index pairs covering totalItems.
func (p *Processor[T]) CalculateBatches(totalItems int) [][2]int {
	if totalItems <= 0 {
		return nil
	}
	total := totalItems / p.batchSize
	if totalItems%p.batchSize > 0 {
		total++
	}

	batches := make([][2]int, total)
	for i := range total {
		start := i * p.batchSize
		end := min(start+p.batchSize, totalItems)
		batches[i] = [2]int{start, end}
	}
	return batches
}

// Collect runs callback for each batch in order and concatenates the results.
// It stops on the first error and returns nothing collected so far.
func Collect[T, R any](ctx context.Context, p *Processor[T], items []T, callback CollectCallback[T, R]) ([]R, error) {
	if callback == nil {
		return nil, ErrNilCallback
	}

	var out []R
	err := p.Process(ctx, items, func(ctx context.Context, batch []T, _ int) error {
		results, err := callback(ctx, batch)
		if err != nil {
			return err
		}
		out = append(out, results...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
