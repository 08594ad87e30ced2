// Package snapshot defines the aggregate narrative state that events
// compose into: time, location, climate, scene, characters, and
// relationships, plus the case-insensitive naming rules all
// set-membership comparisons follow.
package snapshot
