package text

// Bigrams returns every adjacent token pair, in order.
func Bigrams(tokens []string) [][]string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([][]string, 0, len(tokens)-1)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, []string{tokens[i], tokens[i+1]})
	}
	return out
}

// MatchAny reports whether any token of a appears in b.
func MatchAny(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	bag := make(map[string]struct{}, len(b))
	for _, t := range b {
		bag[t] = struct{}{}
	}
	for _, t := range a {
		if _, ok := bag[t]; ok {
			return true
		}
	}
	return false
}

// MatchAll returns every start index in field where target occurs contiguously, left to right.
// Occurrences may overlap.
func MatchAll(target, field []string) []int {
	n := len(target)
	if n == 0 || n > len(field) {
		return nil
	}
	var positions []int
	for i := 0; i+n <= len(field); i++ {
		if equalAt(target, field, i) {
			positions = append(positions, i)
		}
	}
	return positions
}

func equalAt(target, field []string, at int) bool {
	for j, t := range target {
		if field[at+j] != t {
			return false
		}
	}
	return true
}
