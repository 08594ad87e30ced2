// Package store holds the in-memory narrative event log and answers
// point-in-time projection queries over it.
package store
