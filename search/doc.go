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

// Package search provides nearest-neighbor retrieval over the whole corpus.
//
// The corpus is every embedded item in the store:
//   - Glossary terms, labeled by term with the explanation as payload
//   - Feature records, labeled by name with the description as payload
//   - Document sections, labeled by title with the content as payload
//
// A flat Index ranks items by squared Euclidean distance to a query vector.
// The Searcher loads the corpus and builds a fresh index for every query,
// so results always reflect the latest writes without any incremental
// maintenance.
package search
