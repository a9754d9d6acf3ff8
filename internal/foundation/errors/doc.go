// Package errors provides classified error primitives used across footnotelinker.
//
// Errors carry a broad category (config, content, render, store, ...), a
// severity and optional structured context. The CLI adapter maps categories
// to process exit codes.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryConfig, "invalid reference_regex").
//		WithContext("reference_regex", raw).
//		WithCause(compileErr).
//		Build()
package errors
