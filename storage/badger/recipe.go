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
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// RecipeRepository implements storage.RecipeRepository for BadgerDB.
type RecipeRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	// insertMu serializes check-then-write in InsertRecipe.
	insertMu sync.Mutex
}

var _ storage.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(backend *Backend) (*RecipeRepository, error) {
	idSeq, err := backend.GetSequence(recipeIDSeq)
	if err != nil {
		return nil, err
	}

	return &RecipeRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *RecipeRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *RecipeRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// ExistsByNameAndSource reports whether name was already stored for source.
func (r *RecipeRepository) ExistsByNameAndSource(ctx context.Context, name, source string) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		found, err = r.nameSourceTaken(tx, name, source)
		return err
	}, false)
	return found, err
}

// ExistsBySourceURL reports whether a recipe with sourceURL exists.
func (r *RecipeRepository) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return false, nil
	}
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		found, err = r.urlTaken(tx, sourceURL)
		return err
	}, false)
	return found, err
}

// InsertRecipe stores record with its indexes atomically. ID, UUID and
// timestamps are assigned to a copy, which is returned on commit; the
// caller's record is never modified.
func (r *RecipeRepository) InsertRecipe(ctx context.Context, record *core.IngestionRecord) (*core.IngestionRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil record", storage.ErrInvalidQuery)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.insertMu.Lock()
	defer r.insertMu.Unlock()

	stored := *record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		record := &stored
		taken, err := r.nameSourceTaken(tx, record.Recipe.Name, record.Recipe.Source)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %q from %s", storage.ErrDuplicateKey, record.Recipe.Name, record.Recipe.Source)
		}
		if record.Recipe.SourceURL != "" {
			taken, err = r.urlTaken(tx, record.Recipe.SourceURL)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, record.Recipe.SourceURL)
			}
		}

		if record.ID == 0 {
			id, err := r.nextID()
			if err != nil {
				return err
			}
			record.ID = id
		}
		if record.UUID == "" {
			record.UUID = uuid.NewString()
		}
		if record.DiscoveredAt.IsZero() {
			record.DiscoveredAt = time.Now().UTC()
		}
		if record.UpdatedAt.IsZero() {
			record.UpdatedAt = record.DiscoveredAt
		}

		if err := r.writeRecord(tx, record); err != nil {
			return err
		}

		fp := nameSourceFingerprint(record.Recipe.Name, record.Recipe.Source)
		if err := tx.Set(makeFingerprintKey(recipeNameSourcePrefix, fp, record.ID), nil); err != nil {
			return err
		}
		if record.Recipe.SourceURL != "" {
			fp := urlFingerprint(record.Recipe.SourceURL)
			if err := tx.Set(makeFingerprintKey(recipeURLPrefix, fp, record.ID), nil); err != nil {
				return err
			}
		}
		if err := tx.Set(makeUUIDKey(record.UUID), storage.MarshalID(record.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetRecipe retrieves a record by ID.
func (r *RecipeRepository) GetRecipe(ctx context.Context, id core.ID) (*core.IngestionRecord, error) {
	var record *core.IngestionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.readRecord(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: recipe %d", storage.ErrNotFound, id)
	}
	return record, nil
}

// GetRecipeByUUID retrieves a record by its public identifier.
func (r *RecipeRepository) GetRecipeByUUID(ctx context.Context, id string) (*core.IngestionRecord, error) {
	var record *core.IngestionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeUUIDKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var recordID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			recordID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}
		record, err = r.readRecord(tx, recordID)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: recipe %s", storage.ErrNotFound, id)
	}
	return record, nil
}

// ListRecipes returns up to limit records with ID > after, in ID order.
func (r *RecipeRepository) ListRecipes(ctx context.Context, after core.ID, limit int) ([]*core.IngestionRecord, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	var results []*core.IngestionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recipePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeRecipeKey(after + 1)); iter.Valid() && len(results) < limit; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var record *core.IngestionRecord
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalRecord(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	return results, err
}

// CountRecipes counts primary keys without reading values.
func (r *RecipeRepository) CountRecipes(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recipePrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// UpdateEmbeddings replaces the embedding of existing records.
func (r *RecipeRepository) UpdateEmbeddings(ctx context.Context, records ...*core.IngestionRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, record := range records {
			stored, err := r.readRecord(tx, record.ID)
			if err != nil {
				return err
			}
			if stored == nil {
				return fmt.Errorf("%w: recipe %d", storage.ErrNotFound, record.ID)
			}
			stored.Embedding = record.Embedding
			stored.UpdatedAt = now
			if err := r.writeRecord(tx, stored); err != nil {
				return err
			}
			record.UpdatedAt = now
		}
		return tx.Commit()
	}, true)
}

// Helper methods

func (r *RecipeRepository) nextID() (core.ID, error) {
	next, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		next, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// readRecord returns nil, nil when the record doesn't exist.
func (r *RecipeRepository) readRecord(tx *badger.Txn, id core.ID) (*core.IngestionRecord, error) {
	item, err := tx.Get(makeRecipeKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.IngestionRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalRecord(val)
		return unmarshalErr
	})
	return record, err
}

func (r *RecipeRepository) writeRecord(tx *badger.Txn, record *core.IngestionRecord) error {
	return tx.Set(makeRecipeKey(record.ID), storage.MarshalRecord(record))
}

// indexedIDs lists record IDs stored under a fingerprint prefix.
func (r *RecipeRepository) indexedIDs(tx *badger.Txn, prefix []byte) ([]core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !bytes.HasPrefix(key, prefix) || len(key) != len(prefix)+idKeyLen {
			continue
		}
		ids = append(ids, idFromKey(key[len(prefix):]))
	}
	return ids, nil
}

// nameSourceTaken confirms fingerprint hits against the stored record so a
// hash collision never reports a false duplicate.
func (r *RecipeRepository) nameSourceTaken(tx *badger.Txn, name, source string) (bool, error) {
	prefix := makeFingerprintPrefix(recipeNameSourcePrefix, nameSourceFingerprint(name, source))
	return r.anyMatch(tx, prefix, func(rec *core.IngestionRecord) bool {
		return rec.Recipe.Name == name && rec.Recipe.Source == source
	})
}

func (r *RecipeRepository) urlTaken(tx *badger.Txn, sourceURL string) (bool, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	prefix := makeFingerprintPrefix(recipeURLPrefix, urlFingerprint(sourceURL))
	return r.anyMatch(tx, prefix, func(rec *core.IngestionRecord) bool {
		return strings.TrimSpace(rec.Recipe.SourceURL) == sourceURL
	})
}

func (r *RecipeRepository) anyMatch(tx *badger.Txn, prefix []byte, match func(*core.IngestionRecord) bool) (bool, error) {
	ids, err := r.indexedIDs(tx, prefix)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		rec, err := r.readRecord(tx, id)
		if err != nil {
			return false, err
		}
		if rec != nil && match(rec) {
			return true, nil
		}
	}
	return false, nil
}
