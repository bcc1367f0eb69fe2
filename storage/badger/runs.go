// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) *RunRepository {
	return &RunRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database.
func (r *RunRepository) Close() error {
	return nil
}

// SaveRun persists the statistics of a finished run. Saving the same
// label and start time twice overwrites the earlier entry.
func (r *RunRepository) SaveRun(ctx context.Context, stats *core.RunStats) error {
	if stats == nil {
		return fmt.Errorf("%w: nil run", storage.ErrInvalidQuery)
	}
	value := storage.MarshalRun(stats)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeRunKey(stats.StartTime, stats.Label), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecentRuns returns up to limit runs, newest first.
func (r *RunRepository) RecentRuns(ctx context.Context, limit int) ([]*core.RunStats, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	var runs []*core.RunStats
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(runPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration starts at the last key <= seek key.
		seek := append([]byte(runPrefix), 0xFF)
		for iter.Seek(seek); iter.Valid() && len(runs) < limit; iter.Next() {
			var stats *core.RunStats
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				stats, err = storage.UnmarshalRun(val)
				return err
			}); err != nil {
				return err
			}
			runs = append(runs, stats)
		}
		return nil
	}, false)
	return runs, err
}
