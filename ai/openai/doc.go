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

// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// The Scorer rates recipes with a chat model in JSON mode and the Embedder
// is the alternate embedding backend for servers such as Ollama, LocalAI
// or vLLM. Both talk through the langchaingo client.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithScorerHost("http://localhost:11434"),  // /v1 added automatically
//	    ai.WithScorerModel("qwen2.5:3b"),
//	)
//
//	hf, err := huggingface.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider, err := openai.NewProvider(config, openai.WithEmbedder(hf))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	score, err := provider.QualityScorer().Score(ctx, ai.ScoreRequest{Name: "Banana Bread"})
package openai
