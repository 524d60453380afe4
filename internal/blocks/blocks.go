// Package blocks collapses consecutive identical activity samples into
// deduplicated blocks for storage and reporting. Blocks have no bearing on
// session semantics; the session manager consumes raw samples.
package blocks

import (
	"context"
	"math"
	"time"

	"github.com/timewarden/timewarden/internal/model"
)

// Block is one deduplicated run of identical samples.
type Block struct {
	ID          int64
	StartTime   time.Time
	EndTime     time.Time
	Duration    int
	AppName     *string
	BundleID    *string
	WindowTitle *string
	FilePath    *string
	URL         *string
	Idle        bool
}

// Store is the persistence surface the aggregator needs: the most recently
// appended block, in-place extension, and appending a fresh block.
type Store interface {
	LastBlock(ctx context.Context) (*Block, error)
	ExtendBlock(ctx context.Context, id int64, end time.Time, duration int) error
	InsertBlock(ctx context.Context, a model.Activity) error
}

// Update folds one sample into the block log. If every descriptive field
// and the idle flag equal the latest block's, that block's end time is
// extended and its duration recomputed; otherwise a new zero-duration block
// is appended.
func Update(ctx context.Context, st Store, a model.Activity) error {
	last, err := st.LastBlock(ctx)
	if err != nil {
		return err
	}
	if last != nil && last.Matches(a) {
		duration := int(math.Round(a.Timestamp.Sub(last.StartTime).Seconds()))
		return st.ExtendBlock(ctx, last.ID, a.Timestamp, duration)
	}
	return st.InsertBlock(ctx, a)
}

// Matches reports whether the sample continues this block. Comparisons are
// exact, unlike rule matching which folds case.
func (b *Block) Matches(a model.Activity) bool {
	return eq(b.AppName, a.AppName) &&
		eq(b.BundleID, a.BundleID) &&
		eq(b.WindowTitle, a.WindowTitle) &&
		eq(b.FilePath, a.FilePath) &&
		eq(b.URL, a.URL) &&
		b.Idle == a.Idle
}

func eq(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
