package port

import (
	"context"
)

//go:generate mockgen -destination=../service/mocks/checkpoint_mock.go -package=mocks -source=checkpoint.go

// CheckpointStore records which sample positions of a run have been written.
type CheckpointStore interface {
	// Completed returns the positions already written for runKey.
	Completed(ctx context.Context, runKey string) ([]int, error)

	// MarkCompleted records that position has been written for runKey.
	MarkCompleted(ctx context.Context, runKey string, position int) error

	// Close releases the store.
	Close() error
}
