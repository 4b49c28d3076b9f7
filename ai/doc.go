// Package ai defines the embedding interface and configuration used by
// the ingestion sink and search. The openai subpackage implements it
// against OpenAI-compatible APIs; the mock subpackage provides a
// deterministic test double.
package ai
