package orchestrator

import "strings"

// ReverseWords reverses the rune order of each maximal run of non-space
// characters, keeping single spaces as boundaries. Applying it twice
// returns the input, which makes it a handy local debug transform for
// exercising the pipeline without an external call.
func ReverseWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		words[i] = reverseRunes(w)
	}
	return strings.Join(words, " ")
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
