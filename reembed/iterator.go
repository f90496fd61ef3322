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

package reembed

import (
	"context"

	"github.com/poiesic/groundwork/core"
	"github.com/poiesic/groundwork/storage"
)

// DefaultBatchSize is the default number of items embedded per call.
const DefaultBatchSize = 100

// ForEachBatch calls fn with consecutive slices of items holding at most
// size elements. Iteration stops at the first error from fn or when ctx
// ends.
func ForEachBatch[T any](ctx context.Context, items []T, size int, fn func([]T) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, len(items))
		if err := fn(items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// sectionRef locates one section inside a stored document.
type sectionRef struct {
	document core.ID
	index    int
	count    int
	text     string
}

// pendingSections lists the sections that need an embedding. With all set
// every section is listed.
func pendingSections(ctx context.Context, documents storage.DocumentRepository, all bool) ([]sectionRef, error) {
	var refs []sectionRef
	err := documents.ForEachDocument(ctx, func(doc *core.ExtractedDocument) error {
		for i, sec := range doc.Sections {
			if all || len(sec.Vector) == 0 {
				refs = append(refs, sectionRef{
					document: doc.Id,
					index:    i,
					count:    len(doc.Sections),
					text:     sec.Content,
				})
			}
		}
		return nil
	})
	return refs, err
}

// pending filters items down to those that need an embedding.
func pending[T any](items []T, vector func(T) []float32, all bool) []T {
	if all {
		return items
	}
	var out []T
	for _, it := range items {
		if len(vector(it)) == 0 {
			out = append(out, it)
		}
	}
	return out
}
