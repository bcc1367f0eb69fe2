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

package storage

import (
	"fmt"

	"github.com/poiesic/larder/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalRecord serializes an IngestionRecord to bytes.
func MarshalRecord(record *core.IngestionRecord) []byte {
	buf := make([]byte, core.IngestionRecordMUS.Size(*record))
	core.IngestionRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalRecord deserializes an IngestionRecord from bytes. Empty lists
// and maps come back as nil.
func UnmarshalRecord(data []byte) (*core.IngestionRecord, error) {
	record, _, err := core.IngestionRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	compactRecipe(&record.Recipe)
	return &record, nil
}

// MarshalRun serializes run statistics, label and log path included.
func MarshalRun(stats *core.RunStats) []byte {
	buf := make([]byte, core.RunStatsMUS.Size(*stats))
	core.RunStatsMUS.Marshal(*stats, buf)
	return buf
}

// UnmarshalRun deserializes run statistics written by MarshalRun.
func UnmarshalRun(data []byte) (*core.RunStats, error) {
	stats, _, err := core.RunStatsMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if stats.Errors == nil {
		stats.Errors = []core.RunError{}
	}
	return &stats, nil
}

func compactRecipe(r *core.Recipe) {
	r.Ingredients = nilIfEmpty(r.Ingredients)
	r.Instructions = nilIfEmpty(r.Instructions)
	r.Tags = nilIfEmpty(r.Tags)
	r.Images = nilIfEmpty(r.Images)
	if len(r.Nutrition) == 0 {
		r.Nutrition = nil
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
