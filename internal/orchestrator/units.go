package orchestrator

import (
	"fmt"
	"strings"

	"github.com/local/pptrans/internal/pptx"
)

// Unit tags one run's text with a stable id for the transform round trip.
// The Run back-reference stays valid for the whole pass because no stage
// between extraction and writing deletes or replaces runs.
type Unit struct {
	ID       string
	Original string
	Run      *pptx.Run
}

// Extract walks the given slides in order and emits a Unit for every run
// whose text is non-empty after trimming surrounding whitespace. Ids are
// text_<n> with n counting up from zero in emission order, scoped to this
// one pass. Whitespace-only runs are skipped entirely so decorative
// spacing never round-trips through a lossy transform.
func Extract(slides []*pptx.Slide) ([]*Unit, error) {
	var units []*Unit
	n := 0
	for _, s := range slides {
		runs, err := s.Runs()
		if err != nil {
			return nil, err
		}
		for _, r := range runs {
			if strings.TrimSpace(r.Text()) == "" {
				continue
			}
			units = append(units, &Unit{
				ID:       fmt.Sprintf("text_%d", n),
				Original: r.Text(),
				Run:      r,
			})
			n++
		}
	}
	return units, nil
}
