// Package qa is the question-answering pipeline: admission, language
// detection, moderation, retrieval, generation, alignment validation,
// caching and persistence behind a single Ask entry point.
package qa
