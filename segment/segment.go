// Package segment models titled, non-overlapping time intervals over a media
// timeline and the pure operations the editor applies to them.
package segment

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// Segment is a titled time interval in seconds, 0 <= StartTime < EndTime <= duration.
type Segment struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	// Thumbnail is a path to a preview frame. Only the trimmer fills it.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Duration returns EndTime - StartTime.
func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Contains reports whether t lies strictly inside the segment.
func (s Segment) Contains(t float64) bool {
	return t > s.StartTime && t < s.EndTime
}

// Variant selects the per-editor segment defaults.
type Variant int

const (
	// Chapters is the chapter editor: "Chapter N" titles, deletes may empty the set.
	Chapters Variant = iota
	// Trimmer is the video trimmer: "Segment N" titles, thumbnails, never left empty.
	Trimmer
)

var (
	chapterTitle = regexp.MustCompile(`^Chapter \d+$`)
	segmentTitle = regexp.MustCompile(`^Segment \d+$`)
)

// ParseVariant maps "chapters" / "trimmer" to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "chapters", "chapter", "":
		return Chapters, nil
	case "trimmer", "trim":
		return Trimmer, nil
	}
	return Chapters, fmt.Errorf("unknown editor variant %q", s)
}

func (v Variant) String() string {
	if v == Trimmer {
		return "trimmer"
	}
	return "chapters"
}

// AutoTitle returns the canonical title for the 1-based chronological rank n.
func (v Variant) AutoTitle(n int) string {
	if v == Trimmer {
		return fmt.Sprintf("Segment %d", n)
	}
	return fmt.Sprintf("Chapter %d", n)
}

// IsAutoTitle reports whether title was generated (or is empty) and may be renumbered.
func (v Variant) IsAutoTitle(title string) bool {
	if title == "" {
		return true
	}
	if v == Trimmer {
		return segmentTitle.MatchString(title)
	}
	return chapterTitle.MatchString(title)
}

// Thumbnails reports whether segments of this variant carry preview frames.
func (v Variant) Thumbnails() bool {
	return v == Trimmer
}

// FillOnEmpty reports whether an emptied segment set is replaced by one
// segment spanning the whole media.
func (v Variant) FillOnEmpty() bool {
	return v == Trimmer
}

// IDs hands out segment identities. The zero value is ready to use.
type IDs struct {
	mu   sync.Mutex
	last int64
}

// Next returns a fresh id greater than every id handed out or observed.
func (g *IDs) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return g.last
}

// Observe advances the generator past every id in segs.
func (g *IDs) Observe(segs []Segment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range segs {
		if s.ID > g.last {
			g.last = s.ID
		}
	}
}

// Clone returns a copy of segs that shares no backing array with it.
func Clone(segs []Segment) []Segment {
	if segs == nil {
		return nil
	}
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out
}

// SortByStart returns a copy of segs ordered by ascending StartTime.
func SortByStart(segs []Segment) []Segment {
	out := Clone(segs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// Renumber sorts segs chronologically and replaces every auto-generated title
// with the canonical title for its rank. User-edited titles are kept verbatim.
func Renumber(segs []Segment, v Variant) []Segment {
	out := SortByStart(segs)
	for i := range out {
		if v.IsAutoTitle(out[i].Title) {
			out[i].Title = v.AutoTitle(i + 1)
		}
	}
	return out
}

// Split replaces the segment with the given id by two halves cut at at.
// It returns the input unchanged and false when the id is unknown or at is
// not strictly inside the segment. The halves get fresh ids and empty titles;
// callers renumber afterwards.
func Split(segs []Segment, id int64, at float64, ids *IDs) ([]Segment, bool) {
	idx := indexOf(segs, id)
	if idx < 0 || !segs[idx].Contains(at) {
		return segs, false
	}
	orig := segs[idx]

	out := make([]Segment, 0, len(segs)+1)
	out = append(out, segs[:idx]...)
	out = append(out, segs[idx+1:]...)
	out = append(out,
		Segment{ID: ids.Next(), StartTime: orig.StartTime, EndTime: at},
		Segment{ID: ids.Next(), StartTime: at, EndTime: orig.EndTime},
	)
	return out, true
}

// Delete removes the segment with the given id. It returns the input
// unchanged and false when no segment matches.
func Delete(segs []Segment, id int64) ([]Segment, bool) {
	idx := indexOf(segs, id)
	if idx < 0 {
		return segs, false
	}
	out := make([]Segment, 0, len(segs)-1)
	out = append(out, segs[:idx]...)
	out = append(out, segs[idx+1:]...)
	return out, true
}

// FromSplitPoints builds contiguous segments [0,p1), [p1,p2) ... [pn,duration).
// Points outside (0, duration) are ignored and zero-length spans are dropped.
func FromSplitPoints(points []float64, duration float64, v Variant, ids *IDs) []Segment {
	sorted := make([]float64, 0, len(points))
	for _, p := range points {
		if p > 0 && p < duration {
			sorted = append(sorted, p)
		}
	}
	sort.Float64s(sorted)

	out := make([]Segment, 0, len(sorted)+1)
	start := 0.0
	for _, p := range append(sorted, duration) {
		if p == start {
			continue
		}
		out = append(out, Segment{ID: ids.Next(), StartTime: start, EndTime: p})
		start = p
	}
	return Renumber(out, v)
}

// Full returns a single segment spanning the whole media.
func Full(duration float64, v Variant, ids *IDs) []Segment {
	if duration <= 0 {
		return []Segment{}
	}
	return []Segment{{ID: ids.Next(), Title: v.AutoTitle(1), StartTime: 0, EndTime: duration}}
}

// Find returns the segment with the given id.
func Find(segs []Segment, id int64) (Segment, bool) {
	idx := indexOf(segs, id)
	if idx < 0 {
		return Segment{}, false
	}
	return segs[idx], true
}

// At returns the segment containing t, with boundaries counted as inside
// the segment that starts there.
func At(segs []Segment, t float64) (Segment, bool) {
	for _, s := range segs {
		if t >= s.StartTime && t < s.EndTime {
			return s, true
		}
	}
	return Segment{}, false
}

// Overlapping reports whether any two segments share part of their [start, end) ranges.
func Overlapping(segs []Segment) bool {
	sorted := SortByStart(segs)
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartTime < sorted[i-1].EndTime {
			return true
		}
	}
	return false
}

// Valid reports whether every segment is a non-empty interval inside
// [0, duration] and no two overlap.
func Valid(segs []Segment, duration float64) bool {
	for _, s := range segs {
		if !(s.StartTime >= 0 && s.StartTime < s.EndTime && s.EndTime <= duration) {
			return false
		}
	}
	return !Overlapping(segs)
}

func indexOf(segs []Segment, id int64) int {
	for i, s := range segs {
		if s.ID == id {
			return i
		}
	}
	return -1
}
