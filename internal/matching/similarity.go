package matching

import "strings"

// Similarity returns |A ∩ B| / max(|A|, |B|) over the whitespace-separated token sets of two
// normalized strings. Duplicate tokens count once. Two empty inputs give 0.
func Similarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	larger := max(len(ta), len(tb))
	if larger == 0 {
		return 0
	}

	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(larger)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
