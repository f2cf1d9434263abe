package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseWords(t *testing.T) {
	cases := map[string]string{
		"Hei maailma":  "ieH amliaam",
		"Kiitos":       "sotiiK",
		"":             "",
		" reuna ":      " anuer ",
		"kaksi  välit": "iskak  tiläv",
	}
	for in, want := range cases {
		assert.Equal(t, want, ReverseWords(in), "input %q", in)
	}
}

func TestReverseWordsSelfInverse(t *testing.T) {
	inputs := []string{
		"Hei maailma",
		"yö ääni öljy",
		"a b c d",
		"pitkä lause jossa on monta sanaa",
	}
	for _, in := range inputs {
		assert.Equal(t, in, ReverseWords(ReverseWords(in)), "input %q", in)
	}
}

func TestReverseWordsMultiByte(t *testing.T) {
	assert.Equal(t, "öäy", ReverseWords("yäö"))
}
