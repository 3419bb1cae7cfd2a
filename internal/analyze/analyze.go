// Package analyze inspects external data for recurring patterns. Content is
// dispatched through an explicit variant type decided at the call boundary;
// each variant is handled by a dedicated pure function.
package analyze

import (
	"fmt"
	"strings"
	"time"

	"github.com/hcm-labs/hcm/internal/fault"
	"github.com/hcm-labs/hcm/internal/stats"
)

// #region keywords

// Keyword lists carried through from the recorded heuristics.
var consciousnessKeys = []string{"consciousness", "awareness", "attention", "focus", "coherence"}

var consciousnessTerms = []string{"consciousness", "awareness", "mind", "brain", "neural", "cognitive", "intelligence"}

var optimizationTerms = []string{"optimize", "improve", "enhance", "performance", "efficiency", "speed"}

// #endregion keywords

// #region content

// ContentKind tags the variant held by a Content value.
type ContentKind int

const (
	KindInvalid ContentKind = iota
	KindNumeric
	KindStructured
	KindText
)

func (k ContentKind) String() string {
	switch k {
	case KindNumeric:
		return "numerical"
	case KindStructured:
		return "structured"
	case KindText:
		return "text"
	default:
		return "invalid"
	}
}

// Content is the tagged variant passed to Run. The zero value is invalid.
type Content struct {
	kind       ContentKind
	numeric    []float64
	structured map[string]any
	text       string
}

// Numeric wraps an ordered sequence of samples.
func Numeric(values []float64) Content {
	return Content{kind: KindNumeric, numeric: values}
}

// Structured wraps a string-keyed mapping.
func Structured(fields map[string]any) Content {
	return Content{kind: KindStructured, structured: fields}
}

// Text wraps free-form text.
func Text(s string) Content {
	return Content{kind: KindText, text: s}
}

// Kind returns the variant tag.
func (c Content) Kind() ContentKind { return c.kind }

// #endregion content

// #region results

// Pattern is one flagged pattern inside an analysis.
type Pattern struct {
	Type   string
	Count  int
	Values []float64 // first matched samples (numeric patterns)
	Names  []string  // matched keys or terms (keyword patterns)
}

// Insights carries derived signal quality evidence, present only when the
// sequence was long enough to support it.
type Insights struct {
	Coherence   float64
	Rhythmicity float64
	Complexity  float64
}

// Analysis is the outcome of analyzing one Content value.
type Analysis struct {
	Kind      ContentKind
	Size      int
	Mean      float64
	Std       float64
	Min       float64
	Max       float64
	WordCount int
	Keys      []string
	Patterns  []Pattern
	Insights  *Insights
}

// #endregion results

// #region run

// Run dispatches on the content variant. An invalid (zero) variant fails
// fast rather than silently defaulting.
func Run(c Content) (Analysis, error) {
	switch c.kind {
	case KindNumeric:
		return runNumeric(c.numeric), nil
	case KindStructured:
		return runStructured(c.structured), nil
	case KindText:
		return runText(c.text), nil
	default:
		return Analysis{}, fault.New(fault.InvalidArgument, "content variant not set")
	}
}

// #endregion run

// #region numeric

// runNumeric computes aggregates, flags 3/6/9-indexed samples, and derives
// coherence insights for sequences longer than 10 samples. The index rule
// is an opaque carried constant, not a derived criterion.
func runNumeric(data []float64) Analysis {
	a := Analysis{
		Kind: KindNumeric,
		Size: len(data),
		Mean: stats.Mean(data),
		Std:  stats.Std(data),
		Min:  stats.Min(data),
		Max:  stats.Max(data),
	}

	var flagged []float64
	for i, v := range data {
		if i%3 == 0 || i%6 == 0 || i%9 == 0 {
			flagged = append(flagged, v)
		}
	}
	if len(flagged) > 0 {
		head := flagged
		if len(head) > 10 {
			head = head[:10]
		}
		a.Patterns = append(a.Patterns, Pattern{
			Type:   "tesla_369",
			Count:  len(flagged),
			Values: head,
		})
	}

	if len(data) > 10 {
		var complexity float64
		if a.Mean != 0 {
			complexity = a.Std / a.Mean
		}
		a.Insights = &Insights{
			Coherence:   1.0 - a.Std/(a.Mean+0.001),
			Rhythmicity: rhythmicity(data),
			Complexity:  complexity,
		}
	}

	return a
}

// rhythmicity scores consistency of successive differences in [0,1].
func rhythmicity(data []float64) float64 {
	if len(data) < 4 {
		return 0
	}
	diffs := make([]float64, len(data)-1)
	for i := range diffs {
		d := data[i+1] - data[i]
		if d < 0 {
			d = -d
		}
		diffs[i] = d
	}
	avg := stats.Mean(diffs)
	var variance float64
	for _, d := range diffs {
		variance += (d - avg) * (d - avg)
	}
	variance /= float64(len(diffs))

	r := 1.0 / (1.0 + variance)
	if r > 1 {
		r = 1
	}
	return r
}

// #endregion numeric

// #region structured

// runStructured flags keyword keys and recurses on numeric values.
func runStructured(fields map[string]any) Analysis {
	a := Analysis{
		Kind: KindStructured,
		Size: len(fields),
	}

	var matched []string
	var numeric []float64
	for key, value := range fields {
		a.Keys = append(a.Keys, key)
		lower := strings.ToLower(key)
		for _, kw := range consciousnessKeys {
			if strings.Contains(lower, kw) {
				matched = append(matched, key)
				break
			}
		}
		if f, ok := toFloat(value); ok {
			numeric = append(numeric, f)
		}
	}

	if len(matched) > 0 {
		a.Patterns = append(a.Patterns, Pattern{
			Type:  "consciousness_keywords",
			Count: len(matched),
			Names: matched,
		})
	}

	if len(numeric) > 0 {
		inner := runNumeric(numeric)
		a.Mean, a.Std, a.Min, a.Max = inner.Mean, inner.Std, inner.Min, inner.Max
		a.Patterns = append(a.Patterns, inner.Patterns...)
		a.Insights = inner.Insights
	}

	return a
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// #endregion structured

// #region text

// runText does substring matching against the two fixed term lists.
func runText(text string) Analysis {
	a := Analysis{
		Kind:      KindText,
		Size:      len(text),
		WordCount: len(strings.Fields(text)),
	}
	lower := strings.ToLower(text)

	match := func(patternType string, terms []string) {
		var found []string
		for _, term := range terms {
			if strings.Contains(lower, term) {
				found = append(found, term)
			}
		}
		if len(found) > 0 {
			a.Patterns = append(a.Patterns, Pattern{
				Type:  patternType,
				Count: len(found),
				Names: found,
			})
		}
	}

	match("consciousness_terms", consciousnessTerms)
	match("optimization_terms", optimizationTerms)

	return a
}

// #endregion text

// #region db

// Entry is one stored analysis keyed by source and a monotonic counter.
type Entry struct {
	Key       string
	Source    string
	Analysis  Analysis
	Composite float64 // profile composite at analysis time
	LearnedAt time.Time
}

// DB is a capped pattern registry. The counter keeps increasing across
// evictions so identical inputs always yield distinct keys.
type DB struct {
	cap     int
	counter int
	entries []Entry
}

// NewDB creates a registry bounded to capacity entries (oldest evicted).
func NewDB(capacity int) *DB {
	if capacity <= 0 {
		capacity = 512
	}
	return &DB{cap: capacity}
}

// Put stores an analysis and returns its key.
func (db *DB) Put(source string, a Analysis, composite float64) string {
	key := fmt.Sprintf("%s_%d", source, db.counter)
	db.counter++
	db.entries = append(db.entries, Entry{
		Key:       key,
		Source:    source,
		Analysis:  a,
		Composite: composite,
		LearnedAt: time.Now().UTC(),
	})
	if len(db.entries) > db.cap {
		db.entries = db.entries[len(db.entries)-db.cap:]
	}
	return key
}

// Len reports how many entries are retained.
func (db *DB) Len() int { return len(db.entries) }

// Entries returns the retained entries oldest-first.
func (db *DB) Entries() []Entry {
	out := make([]Entry, len(db.entries))
	copy(out, db.entries)
	return out
}

// #endregion db
