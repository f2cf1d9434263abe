package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/local/pptrans/internal/ai"
	"github.com/local/pptrans/internal/config"
	"github.com/local/pptrans/internal/filetype"
	"github.com/local/pptrans/internal/logger"
	"github.com/local/pptrans/internal/orchestrator"
	"github.com/local/pptrans/internal/pagerange"
	"github.com/local/pptrans/internal/pptx"
)

func newRootCommand(cfg config.Config) *cobra.Command {
	var modeFlag string
	var pagesFlag string
	var cacheFlag string

	cmd := &cobra.Command{
		Use:   "pptrans [flags] INPUT OUTPUT",
		Short: "Duplicate and transform the slides of a PowerPoint presentation",
		Long: `pptrans appends a copy of every slide to the end of a .pptx deck and
rewrites the text of only the appended copies: machine translation,
a local word-reversal debug transform, or no change at all.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, args[0], args[1], modeFlag, pagesFlag, cacheFlag)
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "translate", "operation mode: translate, duplicate-only or reverse-words")
	cmd.Flags().StringVar(&pagesFlag, "pages", "", "1-indexed slides to transform, e.g. '1,3-5,8-' (default all)")
	cmd.Flags().StringVar(&cacheFlag, "cache-file", "translation_cache.json", "translation cache path; empty disables the cache")
	return cmd
}

func run(cmd *cobra.Command, cfg config.Config, input, output, modeFlag, pagesFlag, cacheFlag string) error {
	mode, err := orchestrator.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	if err := filetype.New().RequirePresentation(input); err != nil {
		return err
	}

	deck, err := pptx.Open(input)
	if err != nil {
		return err
	}

	var pages map[int]bool
	if pagesFlag != "" {
		pages, err = pagerange.Parse(pagesFlag, len(deck.Slides()))
		if err != nil {
			return err
		}
	}

	var llm ai.Client
	cachePath := ""
	if mode == orchestrator.ModeTranslate {
		switch cfg.Translate.Engine {
		case "openai":
			llm = ai.NewOpenAIClient()
		case "anthropic":
			llm = ai.NewAnthropicClient()
		default:
			return fmt.Errorf("unknown translate engine %q", cfg.Translate.Engine)
		}
		cachePath = cacheFlag
	}

	orc, err := orchestrator.New(llm, cfg.Translate, *logger.Get())
	if err != nil {
		return err
	}

	err = orc.Run(cmd.Context(), deck, orchestrator.Options{
		Mode:      mode,
		Output:    output,
		Pages:     pages,
		CachePath: cachePath,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Presentation saved in '%s' mode to: %s\n", mode, output)
	return nil
}
