// Package openai implements the ai.Embedder interface against
// OpenAI-compatible embedding APIs via langchaingo. It works with
// hosted OpenAI as well as local servers (Ollama, LocalAI, vLLM).
package openai
