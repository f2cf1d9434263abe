package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/local/pptrans/internal/ai"
	"github.com/local/pptrans/internal/cache"
	"github.com/local/pptrans/internal/config"
	"github.com/local/pptrans/internal/pptx"
)

// Mode selects the text transform applied to the appended slide copies.
// The mode is chosen once per invocation and never changes mid-pipeline.
type Mode string

const (
	ModeTranslate     Mode = "translate"
	ModeDuplicateOnly Mode = "duplicate-only"
	ModeReverseWords  Mode = "reverse-words"
)

// ParseMode validates a mode string from the CLI.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeTranslate, ModeDuplicateOnly, ModeReverseWords:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want translate, duplicate-only or reverse-words)", s)
}

// Options configures one pipeline invocation.
type Options struct {
	Mode   Mode
	Output string
	// Pages selects which original slides (0-indexed) have their appended
	// copies transformed; nil selects all. Duplication always covers every
	// original slide.
	Pages map[int]bool
	// CachePath points at the translation cache file; empty disables the
	// cache. Only translate mode reads it.
	CachePath string
}

// Orchestrator drives one duplicate → extract → transform → write → save
// sweep over a deck. Everything runs sequentially; the only latent
// operation is the single transformer call in translate mode, which has no
// timeout or retry and is fatal on error.
type Orchestrator struct {
	llm       ai.Client
	model     string
	maxTokens int
	source    string
	target    string
	log       zerolog.Logger
}

// New builds an orchestrator. llm may be nil for modes that never call the
// transformer. The source and target language tags are resolved to English
// display names for the instruction prompt.
func New(llm ai.Client, cfg config.TranslateConfig, log zerolog.Logger) (*Orchestrator, error) {
	source, err := languageName(cfg.SourceLang)
	if err != nil {
		return nil, err
	}
	target, err := languageName(cfg.TargetLang)
	if err != nil {
		return nil, err
	}
	model := cfg.OpenAIModel
	if llm != nil && llm.Name() == "anthropic" {
		model = cfg.AnthropicModel
	}
	runID := uuid.NewString()[:8]
	return &Orchestrator{
		llm:       llm,
		model:     model,
		maxTokens: cfg.MaxTokens,
		source:    source,
		target:    target,
		log:       log.With().Str("run_id", runID).Logger(),
	}, nil
}

// Run executes the pipeline for one deck and persists the result. Slides
// [0,N) are never modified; every mutation lands on the appended copies.
func (o *Orchestrator) Run(ctx context.Context, deck *pptx.Deck, opts Options) error {
	originals := len(deck.Slides())
	o.log.Info().Str("mode", string(opts.Mode)).Int("slides", originals).Msg("pipeline start")

	if originals == 0 {
		o.log.Warn().Msg("presentation has no slides")
		return save(deck, opts.Output)
	}

	// Snapshot of the original count bounds the sweep: slides appended
	// below are never themselves duplicated.
	for i := 0; i < originals; i++ {
		if _, err := deck.Duplicate(i); err != nil {
			return fmt.Errorf("duplicate slide %d: %w", i+1, err)
		}
	}

	if opts.Mode != ModeDuplicateOnly {
		units, err := Extract(appendedSelection(deck, originals, opts.Pages))
		if err != nil {
			return fmt.Errorf("extract text: %w", err)
		}
		switch {
		case len(units) == 0:
			o.log.Info().Msg("no text to process on selected slides")
		case opts.Mode == ModeTranslate:
			if err := o.translate(ctx, units, opts.CachePath); err != nil {
				return err
			}
		case opts.Mode == ModeReverseWords:
			o.log.Info().Int("units", len(units)).Msg("reversing words")
			Apply(units, func(u *Unit) string { return ReverseWords(u.Original) })
		}
	}

	if err := save(deck, opts.Output); err != nil {
		return err
	}
	o.log.Info().Str("output", opts.Output).Msg("presentation saved")
	return nil
}

func save(deck *pptx.Deck, output string) error {
	if err := deck.Save(output); err != nil {
		return fmt.Errorf("save presentation: %w", err)
	}
	return nil
}

// appendedSelection returns the appended copies of the selected original
// slides. The copy of original slide i sits at index originals+i.
func appendedSelection(deck *pptx.Deck, originals int, pages map[int]bool) []*pptx.Slide {
	slides := deck.Slides()
	out := make([]*pptx.Slide, 0, originals)
	for i := 0; i < originals; i++ {
		if pages == nil || pages[i] {
			out = append(out, slides[originals+i])
		}
	}
	return out
}

// translate resolves units against the cache, ships the remainder to the
// transformer in a single batch, and applies the merged result with
// fallback to the original text.
func (o *Orchestrator) translate(ctx context.Context, units []*Unit, cachePath string) error {
	if o.llm == nil {
		return fmt.Errorf("translate mode requires a transformer client")
	}

	var store *cache.Cache
	if cachePath != "" {
		store = cache.Load(cachePath)
	}

	result := make(map[string]string, len(units))
	var pending []*Unit
	var misses []slideGroup
	for _, g := range groupBySlide(units) {
		if store != nil {
			if texts, ok := store.Lookup(g.hash, len(g.units)); ok {
				for i, u := range g.units {
					result[u.ID] = texts[i]
				}
				continue
			}
			misses = append(misses, g)
		}
		pending = append(pending, g.units...)
	}
	o.log.Info().
		Int("units", len(units)).
		Int("cached", len(units)-len(pending)).
		Msg("translation batch prepared")

	if len(pending) > 0 {
		resp, err := o.llm.Do(ctx, ai.Request{
			System:    o.instruction(),
			Prompt:    Encode(pending),
			Model:     o.model,
			MaxTokens: o.maxTokens,
		})
		if err != nil {
			return fmt.Errorf("transformer call: %w", err)
		}
		o.log.Debug().
			Str("provider", o.llm.Name()).
			Int("tokens_in", resp.TokensIn).
			Int("tokens_out", resp.TokensOut).
			Msg("transformer response received")

		decoded, malformed := Decode(resp.Text)
		for _, line := range malformed {
			o.log.Warn().Str("line", line).Msg("discarding unparsable response line")
		}
		for id, text := range decoded {
			result[id] = text
		}

		if store != nil {
			resolve := FromResult(result)
			for _, g := range misses {
				texts := make([]string, len(g.units))
				for i, u := range g.units {
					texts[i] = resolve(u)
				}
				store.Store(g.hash, texts)
			}
		}
	}

	Apply(units, FromResult(result))

	if store != nil {
		if err := store.Save(); err != nil {
			o.log.Warn().Err(err).Msg("could not save translation cache")
		}
	}
	return nil
}

func (o *Orchestrator) instruction() string {
	return fmt.Sprintf(instructionTemplate, o.source, o.target)
}

const instructionTemplate = `Translate the following text segments from %s to %s. Each segment is prefixed with an ID. Return the translations in the exact same format, preserving the IDs, with each translation on a new line.
For example, if you receive:
text_0: Hei maailma
text_1: Kiitos
you return:
text_0: Hello world
text_1: Thank you
Do not add any explanations or introductory remarks.`

// slideGroup holds the consecutive units of one slide plus the cache key
// derived from their original texts.
type slideGroup struct {
	hash  string
	units []*Unit
}

func groupBySlide(units []*Unit) []slideGroup {
	var groups []slideGroup
	var cur *pptx.Slide
	for _, u := range units {
		if s := u.Run.Slide(); s != cur {
			cur = s
			groups = append(groups, slideGroup{})
		}
		g := &groups[len(groups)-1]
		g.units = append(g.units, u)
	}
	for i := range groups {
		texts := make([]string, len(groups[i].units))
		for j, u := range groups[i].units {
			texts[j] = u.Original
		}
		groups[i].hash = cache.PageHash(texts)
	}
	return groups
}

func languageName(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("language tag %q: %w", tag, err)
	}
	return display.English.Languages().Name(t), nil
}
