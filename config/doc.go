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

// Package config loads sift's configuration.
//
// Values are resolved in order of increasing precedence:
//
//  1. Built-in defaults (NewConfig)
//  2. A YAML file, when a path is given
//  3. Environment variables
//
// Recognized environment variables are TOP_K, RERANK_K, MMR_LAMBDA,
// EMBED_DIM, OLLAMA_HOST, EMBED_MODEL, OPENROUTER_API_KEY,
// OPENROUTER_MODEL, SIFT_DB and SIFT_LOG_LEVEL.
package config
