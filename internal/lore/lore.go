// Package lore matches world-info entries against transcript text so
// extraction prompts can carry additional context.
package lore

import (
	"sort"
	"strings"

	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

// Entry is one world-info record.
type Entry struct {
	Keys    []string
	Content string
	Comment string
	Order   int
}

// Book is a collection of world-info entries.
type Book struct {
	Entries []Entry
}

// Match returns the entries whose keys occur in text, ordered by their
// Order field. When filter names are given, an entry must additionally
// mention at least one of them in its keys or comment. No matches
// yields an empty slice, never an error.
func (b Book) Match(text string, filter []string) []Entry {
	folded := snapshot.FoldName(text)
	var matched []Entry
	for _, entry := range b.Entries {
		if !keyInText(entry, folded) {
			continue
		}
		if len(filter) > 0 && !mentionsAny(entry, filter) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Order < matched[j].Order
	})
	return matched
}

// Render joins matched entries into a prompt context block. An empty
// match list renders as an empty string.
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func keyInText(entry Entry, foldedText string) bool {
	for _, key := range entry.Keys {
		key = snapshot.FoldName(key)
		if key != "" && strings.Contains(foldedText, key) {
			return true
		}
	}
	return false
}

func mentionsAny(entry Entry, names []string) bool {
	haystack := snapshot.FoldName(strings.Join(entry.Keys, " ") + " " + entry.Comment)
	for _, name := range names {
		folded := snapshot.FoldName(name)
		if folded != "" && strings.Contains(haystack, folded) {
			return true
		}
	}
	return false
}
