package rules

// suggestThreshold is the minimum similarity for a "did you mean" hint
const suggestThreshold = 0.6

// editDistance returns the Levenshtein distance between a and b,
// keeping only two rows of the matrix.
func editDistance(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// similarity is 1 - distance/max(len), in [0, 1]
func similarity(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(a, b))/float64(longest)
}

// Suggest returns the candidate closest to target when it is similar enough.
// An exact match is never suggested.
func Suggest(target string, candidates []string) (string, bool) {
	var best string
	var bestScore float64
	for _, c := range candidates {
		if c == target {
			return "", false
		}
		if s := similarity(target, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore >= suggestThreshold {
		return best, true
	}
	return "", false
}

// SuggestProtocol returns a registered protocol close to name
func (r *Registry) SuggestProtocol(name string) (string, bool) {
	return Suggest(name, r.Protocols())
}
