package records

import "strings"

// keyDelimiter joins the four key fields; the fields themselves never
// contain it in practice, and empty fields keep their position.
const keyDelimiter = "|"

// CompositeKey returns the business key identifying the underlying work item:
// the item, rule, test and form fields joined by "|" in that fixed order.
// Missing fields contribute an empty segment.
func (r Record) CompositeKey() string {
	return strings.Join([]string{r.ItemKey, r.RuleKey, r.TestKey, r.FormKey}, keyDelimiter)
}

// Deduplicate drops every record whose composite key was already seen,
// keeping the first occurrence and preserving relative order. It is a pure
// function: the input slice is not modified.
//
// Callers are responsible for only invoking this when all four key columns
// were present in the source; with absent key fields every record would
// collapse onto the "|||" key.
func Deduplicate(recs []Record) []Record {
	if len(recs) == 0 {
		return []Record{}
	}

	seen := make(map[string]struct{}, len(recs))
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		key := r.CompositeKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
