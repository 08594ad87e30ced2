// Package errors provides structured error handling for the engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeMalformedReply marks an oracle reply the schema rejected.
	CodeMalformedReply Code = "MALFORMED_REPLY"

	// Storage errors
	CodeNotFound             Code = "NOT_FOUND"
	CodeStorageNotConfigured Code = "STORAGE_NOT_CONFIGURED"
)
