// Package pagerange parses 1-indexed slide selections such as "1,3-5,8-".
package pagerange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Parse turns a range expression into a set of 0-indexed slide numbers,
// validated against total. Open ranges are allowed on both ends ("-5",
// "8-"); a range reaching past the deck is capped with a warning, while
// non-positive, reversed or out-of-range single pages are errors.
func Parse(spec string, total int) (map[int]bool, error) {
	if total == 0 {
		if spec != "" {
			return nil, fmt.Errorf("cannot apply page range %q to a presentation with no slides", spec)
		}
		return map[int]bool{}, nil
	}
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("page range cannot be empty")
	}

	selected := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			if err := parseRange(part, total, selected); err != nil {
				return nil, err
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		if n < 1 || n > total {
			return nil, fmt.Errorf("page %d is out of range [1, %d]", n, total)
		}
		selected[n-1] = true
	}
	return selected, nil
}

func parseRange(part string, total int, selected map[int]bool) error {
	startStr, endStr, _ := strings.Cut(part, "-")
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	start := 1
	if startStr != "" {
		n, err := strconv.Atoi(startStr)
		if err != nil {
			return fmt.Errorf("invalid start page %q in %q", startStr, part)
		}
		if n < 1 {
			return fmt.Errorf("page numbers must be positive in %q", part)
		}
		start = n
	}

	end := total
	if endStr != "" {
		n, err := strconv.Atoi(endStr)
		if err != nil {
			return fmt.Errorf("invalid end page %q in %q", endStr, part)
		}
		if n < 1 {
			return fmt.Errorf("page numbers must be positive in %q", part)
		}
		end = n
	}

	if start > end {
		return fmt.Errorf("start page %d is after end page %d in %q", start, end, part)
	}
	if start > total {
		log.Warn().Str("range", part).Int("slides", total).
			Msg("range starts beyond the last slide, selecting nothing")
		return nil
	}
	if endStr != "" && end > total {
		log.Warn().Str("range", part).Int("slides", total).
			Msg("range reaches beyond the last slide, capping")
	}
	if end > total {
		end = total
	}
	for i := start; i <= end; i++ {
		selected[i-1] = true
	}
	return nil
}
