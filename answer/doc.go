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

// Package answer synthesizes an answer from retrieved documents.
//
// The Answerer retrieves diversified results for a question, renders them
// into a numbered context block, and asks an ai.Generator to answer from
// that context only. Retrieval and generation failures are returned as is;
// an empty result set still reaches the generator, which is instructed to
// say it does not know.
package answer
