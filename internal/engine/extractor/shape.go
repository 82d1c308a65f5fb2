// Package extractor scans tokenized sentences for acronym occurrences and
// nearby parenthetical definition candidates.
package extractor

import "unicode"

// Predicate decides whether a token is acronym-shaped.  It is the pluggable
// precision/recall tuning point of the engine: deployments swap or
// reparameterize it through configuration rather than code changes.
type Predicate interface {
	IsAcronym(token string) bool
}

// ShapePredicate is the default Predicate: all-uppercase tokens (internal
// digits and hyphens allowed) within configured length bounds, excluding
// pure numbers and a configurable list of common all-caps non-acronyms.
type ShapePredicate struct {
	minLength  int
	maxLength  int
	exclusions map[string]struct{}
}

// NewShapePredicate builds a ShapePredicate.  Exclusion matching is exact
// and case-sensitive, consistent with registry keys.
func NewShapePredicate(minLength, maxLength int, exclusions []string) *ShapePredicate {
	ex := make(map[string]struct{}, len(exclusions))
	for _, w := range exclusions {
		ex[w] = struct{}{}
	}
	return &ShapePredicate{
		minLength:  minLength,
		maxLength:  maxLength,
		exclusions: ex,
	}
}

// IsAcronym reports whether token is acronym-shaped.
func (p *ShapePredicate) IsAcronym(token string) bool {
	runes := []rune(token)
	if len(runes) < p.minLength || len(runes) > p.maxLength {
		return false
	}

	letters := 0
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			letters++
		case unicode.IsDigit(r):
			// internal digits only
			if i == 0 || i == len(runes)-1 {
				return false
			}
		case r == '-':
			// internal hyphens only
			if i == 0 || i == len(runes)-1 {
				return false
			}
		default:
			return false
		}
	}
	// A pure number or hyphenated number is not an acronym.
	if letters == 0 {
		return false
	}

	_, excluded := p.exclusions[token]
	return !excluded
}
