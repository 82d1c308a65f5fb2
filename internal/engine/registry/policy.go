package registry

import (
	"strings"
	"unicode"

	"github.com/turtacn/AcroLex/internal/config"
)

// AggregationPolicy combines the confidences of a prototype's supporting
// occurrences into one aggregate score.  Implementations must be
// monotonically non-decreasing in occurrence count: adding evidence never
// lowers a prototype's standing.
type AggregationPolicy interface {
	Name() string

	// Aggregate returns the new aggregate given the current aggregate,
	// the current support count (before the new occurrence), and the
	// incoming occurrence's confidence.
	Aggregate(current float64, support int, incoming float64) float64
}

// MaxAggregation keeps the maximum supporting confidence.  This is the
// documented default: trivially monotonic, and a single clean definition is
// better evidence than many mediocre ones.
type MaxAggregation struct{}

func (MaxAggregation) Name() string { return "max" }

func (MaxAggregation) Aggregate(current float64, support int, incoming float64) float64 {
	if support == 0 || incoming > current {
		return incoming
	}
	return current
}

// MergePolicy reduces a candidate expansion's words to a merge key: two
// candidates with equal keys become one prototype.
type MergePolicy interface {
	Name() string
	Key(words []string) string
}

// StrictMerge keys on the lowercased, single-spaced word sequence.
// "public-private partnership" and "public private partnership" stay
// distinct prototypes under this policy.
type StrictMerge struct{}

func (StrictMerge) Name() string { return config.MergeStrict }

func (StrictMerge) Key(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return strings.Join(out, " ")
}

// LooseMerge additionally strips all intra-word punctuation, so expansions
// differing only in hyphenation merge under one prototype.  This is the
// default policy.
type LooseMerge struct{}

func (LooseMerge) Name() string { return config.MergeLoose }

func (LooseMerge) Key(words []string) string {
	var sb strings.Builder
	for _, w := range words {
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				// hyphen and other punctuation separate sub-words
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte(' ')
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// MergePolicyFor maps a configured selector to its implementation,
// defaulting to LooseMerge for unknown values.
func MergePolicyFor(name string) MergePolicy {
	if name == config.MergeStrict {
		return StrictMerge{}
	}
	return LooseMerge{}
}
