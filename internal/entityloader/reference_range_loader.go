package entityloader

import (
	"context"
	"fmt"
	"time"

	"github.com/rpattn/klinik/internal/domain"
	"github.com/rpattn/klinik/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// ReferenceRangeLoader batches reference range lookups by lab test id.
type ReferenceRangeLoader struct {
	Loader *dataloader.Loader
}

func NewReferenceRangeLoader(repo repository.LabTestRepository) *ReferenceRangeLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		ids := make([]uuid.UUID, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				for j := range results {
					results[j] = &dataloader.Result{Error: fmt.Errorf("invalid UUID: %w", err)}
				}
				return results
			}
			ids[i] = id
		}

		byTest, err := repo.ReferenceRangesByTestIDs(ctx, ids)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Results must follow the order of keys.
		for i, id := range ids {
			ranges := byTest[id]
			if ranges == nil {
				ranges = []domain.ReferenceRange{}
			}
			results[i] = &dataloader.Result{Data: ranges}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &ReferenceRangeLoader{Loader: loader}
}

// Load returns the reference ranges of one lab test.
func (l *ReferenceRangeLoader) Load(ctx context.Context, labTestID uuid.UUID) ([]domain.ReferenceRange, error) {
	data, err := l.Loader.Load(ctx, dataloader.StringKey(labTestID.String()))()
	if err != nil {
		return nil, err
	}
	ranges, ok := data.([]domain.ReferenceRange)
	if !ok {
		return nil, fmt.Errorf("unexpected loader result %T", data)
	}
	return ranges, nil
}

// LoadAll queues every id before waiting, so they share one batch.
func (l *ReferenceRangeLoader) LoadAll(ctx context.Context, labTestIDs []uuid.UUID) (map[uuid.UUID][]domain.ReferenceRange, error) {
	thunks := make([]dataloader.Thunk, len(labTestIDs))
	for i, id := range labTestIDs {
		thunks[i] = l.Loader.Load(ctx, dataloader.StringKey(id.String()))
	}

	out := make(map[uuid.UUID][]domain.ReferenceRange, len(labTestIDs))
	for i, thunk := range thunks {
		data, err := thunk()
		if err != nil {
			return nil, err
		}
		ranges, ok := data.([]domain.ReferenceRange)
		if !ok {
			return nil, fmt.Errorf("unexpected loader result %T", data)
		}
		out[labTestIDs[i]] = ranges
	}
	return out, nil
}
