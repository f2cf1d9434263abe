package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pptrans/internal/ai"
	"github.com/local/pptrans/internal/config"
	"github.com/local/pptrans/internal/pptx"
	"github.com/local/pptrans/internal/pptx/pptxtest"
)

type stubLLM struct {
	resp  ai.Response
	err   error
	calls int
	last  ai.Request
}

func (s *stubLLM) Name() string { return "openai" }

func (s *stubLLM) Do(_ context.Context, req ai.Request) (ai.Response, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

func testConfig() config.TranslateConfig {
	return config.TranslateConfig{
		Engine:      "openai",
		OpenAIModel: "test-model",
		MaxTokens:   1024,
		SourceLang:  "fi",
		TargetLang:  "en",
	}
}

func newTestOrchestrator(t *testing.T, llm ai.Client) *Orchestrator {
	t.Helper()
	o, err := New(llm, testConfig(), zerolog.Nop())
	require.NoError(t, err)
	return o
}

func slideTexts(t *testing.T, d *pptx.Deck) [][]string {
	t.Helper()
	var out [][]string
	for _, s := range d.Slides() {
		runs, err := s.Runs()
		require.NoError(t, err)
		texts := make([]string, len(runs))
		for i, r := range runs {
			texts[i] = r.Text()
		}
		out = append(out, texts)
	}
	return out
}

func TestRunReverseWordsEndToEnd(t *testing.T) {
	d := openDeck(t, pptxtest.Slide{Texts: []string{"Hei maailma"}})
	out := filepath.Join(t.TempDir(), "out.pptx")

	o := newTestOrchestrator(t, nil)
	require.NoError(t, o.Run(context.Background(), d, Options{Mode: ModeReverseWords, Output: out}))

	d2, err := pptx.Open(out)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hei maailma"}, {"ieH amliaam"}}, slideTexts(t, d2))
}

func TestRunDuplicateOnlyLeavesTextIntact(t *testing.T) {
	d := openDeck(t,
		pptxtest.Slide{Texts: []string{"yksi"}},
		pptxtest.Slide{Texts: []string{"kaksi"}},
	)
	out := filepath.Join(t.TempDir(), "out.pptx")

	stub := &stubLLM{}
	o := newTestOrchestrator(t, stub)
	require.NoError(t, o.Run(context.Background(), d, Options{Mode: ModeDuplicateOnly, Output: out}))

	d2, err := pptx.Open(out)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"yksi"}, {"kaksi"}, {"yksi"}, {"kaksi"}}, slideTexts(t, d2))
	assert.Zero(t, stub.calls)
}

func TestRunTranslateAppliesWithFallback(t *testing.T) {
	d := openDeck(t, pptxtest.Slide{Texts: []string{"Hei", "Kiitos"}})
	out := filepath.Join(t.TempDir(), "out.pptx")

	// One translated line, one garbage line; text_1 has no translation and
	// must fall back to its original.
	stub := &stubLLM{resp: ai.Response{Text: "text_0: Hello\ngarbage-no-colon"}}
	o := newTestOrchestrator(t, stub)
	require.NoError(t, o.Run(context.Background(), d, Options{Mode: ModeTranslate, Output: out}))

	require.Equal(t, 1, stub.calls)
	assert.Equal(t, "test-model", stub.last.Model)
	assert.Contains(t, stub.last.System, "Finnish")
	assert.Contains(t, stub.last.System, "English")
	assert.Equal(t, "text_0: Hei\ntext_1: Kiitos", stub.last.Prompt)

	d2, err := pptx.Open(out)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hei", "Kiitos"}, {"Hello", "Kiitos"}}, slideTexts(t, d2))
}

func TestRunTranslateClientErrorIsFatal(t *testing.T) {
	d := openDeck(t, pptxtest.Slide{Texts: []string{"Hei"}})
	out := filepath.Join(t.TempDir(), "out.pptx")

	stub := &stubLLM{err: errors.New("boom")}
	o := newTestOrchestrator(t, stub)
	err := o.Run(context.Background(), d, Options{Mode: ModeTranslate, Output: out})
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no partial output on failure")
}

func TestRunTranslateSkipsTransformerWithoutText(t *testing.T) {
	d := openDeck(t, pptxtest.Slide{Texts: []string{"   ", ""}})
	out := filepath.Join(t.TempDir(), "out.pptx")

	stub := &stubLLM{}
	o := newTestOrchestrator(t, stub)
	require.NoError(t, o.Run(context.Background(), d, Options{Mode: ModeTranslate, Output: out}))

	assert.Zero(t, stub.calls)
	_, err := os.Stat(out)
	assert.NoError(t, err, "deck is still persisted")
}

func TestRunTranslateUsesCacheOnSecondInvocation(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "cache.json")
	in := filepath.Join(dir, "in.pptx")
	require.NoError(t, pptxtest.WriteFile(in, pptxtest.Slide{Texts: []string{"Hei"}}))

	first, err := pptx.Open(in)
	require.NoError(t, err)
	stub := &stubLLM{resp: ai.Response{Text: "text_0: Hello"}}
	o := newTestOrchestrator(t, stub)
	out1 := filepath.Join(dir, "out1.pptx")
	require.NoError(t, o.Run(context.Background(), first, Options{
		Mode: ModeTranslate, Output: out1, CachePath: cachePath,
	}))
	require.Equal(t, 1, stub.calls)

	second, err := pptx.Open(in)
	require.NoError(t, err)
	out2 := filepath.Join(dir, "out2.pptx")
	require.NoError(t, o.Run(context.Background(), second, Options{
		Mode: ModeTranslate, Output: out2, CachePath: cachePath,
	}))
	assert.Equal(t, 1, stub.calls, "cached slide must not reach the transformer")

	d2, err := pptx.Open(out2)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Hei"}, {"Hello"}}, slideTexts(t, d2))
}

func TestRunPageSelectionLimitsTransform(t *testing.T) {
	d := openDeck(t,
		pptxtest.Slide{Texts: []string{"eka"}},
		pptxtest.Slide{Texts: []string{"toka"}},
	)
	out := filepath.Join(t.TempDir(), "out.pptx")

	o := newTestOrchestrator(t, nil)
	require.NoError(t, o.Run(context.Background(), d, Options{
		Mode:   ModeReverseWords,
		Output: out,
		Pages:  map[int]bool{0: true},
	}))

	d2, err := pptx.Open(out)
	require.NoError(t, err)
	// Both originals are duplicated, but only the first copy is transformed.
	assert.Equal(t, [][]string{{"eka"}, {"toka"}, {"ake"}, {"toka"}}, slideTexts(t, d2))
}

func TestRunEmptyDeck(t *testing.T) {
	in := filepath.Join(t.TempDir(), "empty.pptx")
	require.NoError(t, pptxtest.WriteFile(in))
	d, err := pptx.Open(in)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.pptx")
	o := newTestOrchestrator(t, nil)
	require.NoError(t, o.Run(context.Background(), d, Options{Mode: ModeTranslate, Output: out}))
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"translate", "duplicate-only", "reverse-words", "TRANSLATE"} {
		_, err := ParseMode(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseMode("shuffle")
	assert.Error(t, err)
}
