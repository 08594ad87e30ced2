package window

import (
	"testing"

	"github.com/marisbel/chronicle/internal/narrative/event"
)

type fakeIndex struct {
	evt event.Event
	ok  bool
}

func (f fakeIndex) LastEventOfKind([]event.Matcher) (event.Event, bool) {
	return f.evt, f.ok
}

func TestSelectFixedNumber(t *testing.T) {
	r := Select(FixedNumber{N: 4}, 10, nil)
	if r.Start != 7 || r.End != 10 {
		t.Fatalf("range = %+v, want {7 10}", r)
	}
	// The window never starts before the transcript.
	r = Select(FixedNumber{N: 10}, 2, nil)
	if r.Start != 0 || r.End != 2 {
		t.Fatalf("range = %+v, want {0 2}", r)
	}
}

func TestSelectSinceLastEventOfKind(t *testing.T) {
	index := fakeIndex{evt: event.Event{Source: event.Source{MessageID: 6}}, ok: true}
	r := Select(SinceLastEventOfKind{Matchers: []event.Matcher{{Kind: "time"}}}, 10, index)
	if r.Start != 6 || r.End != 10 {
		t.Fatalf("range = %+v, want {6 10}", r)
	}
	// Without a prior event the whole transcript is in scope.
	r = Select(SinceLastEventOfKind{}, 10, fakeIndex{})
	if r.Start != 0 || r.End != 10 {
		t.Fatalf("range = %+v, want {0 10}", r)
	}
}

func TestLimitRange(t *testing.T) {
	cases := []struct {
		in   Range
		max  int
		want Range
	}{
		{Range{0, 49}, 10, Range{40, 49}},
		{Range{0, 4}, 10, Range{0, 4}},
		{Range{0, 10}, 1, Range{10, 10}},
		{Range{3, 20}, 0, Range{3, 20}},
		{Range{3, 20}, -5, Range{3, 20}},
	}
	for _, tc := range cases {
		if got := LimitRange(tc.in, tc.max); got != tc.want {
			t.Fatalf("LimitRange(%+v, %d) = %+v, want %+v", tc.in, tc.max, got, tc.want)
		}
	}
}
