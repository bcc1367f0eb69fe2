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

package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/larder/core"
)

const runLogTimeLayout = "20060102T150405.000Z"

// RunLogName is the file name of the run log for a run started at stats.StartTime.
func RunLogName(stats *core.RunStats) string {
	return "ingestion-" + stats.StartTime.UTC().Format(runLogTimeLayout) + ".json"
}

// WriteRunLog writes stats as indented JSON into dir and returns the path.
func WriteRunLog(dir string, stats *core.RunStats) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run log directory: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run log: %w", err)
	}

	path := filepath.Join(dir, RunLogName(stats))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run log: %w", err)
	}
	return path, nil
}
