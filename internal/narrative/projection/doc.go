// Package projection reconstructs narrative snapshots by folding
// active events, in log order, over an initial baseline.
package projection
