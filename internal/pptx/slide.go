package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Slide is one slide part of the package. Its raw XML is parsed once, on
// first access to Runs, into text spans; everything outside those spans is
// opaque and survives Save byte-for-byte.
type Slide struct {
	deck *Deck
	part string

	parsed bool
	raw    []byte // snapshot the run offsets index into
	runs   []*Run
}

// Part returns the archive name of the slide XML, e.g. "ppt/slides/slide3.xml".
func (s *Slide) Part() string { return s.part }

// Run is the atomic unit of styled text: the character content of one
// <a:t> element inside an <a:r> run. Formatting lives in the surrounding
// bytes and is never read or copied; SetText replaces only the text span.
type Run struct {
	slide *Slide
	start int // span within slide.raw
	end   int
	empty bool // span covers a self-closed <a:t/> tag

	text  string
	dirty bool
}

// Text returns the current text payload of the run.
func (r *Run) Text() string { return r.text }

// SetText replaces the text payload. All other run properties are untouched.
func (r *Run) SetText(t string) {
	if t == r.text && !r.dirty {
		return
	}
	r.text = t
	r.dirty = true
}

// Slide returns the slide owning this run.
func (r *Run) Slide() *Slide { return r.slide }

var (
	runOpen  = []byte("<a:r>")
	runClose = []byte("</a:r>")
	tOpen    = []byte("<a:t")
	tClose   = []byte("</a:t>")
)

// Runs returns the slide's text runs in document order, which for
// presentation XML is shape order, then paragraph and run order, with table
// cells appearing row by row. Text held outside <a:r> elements (fields,
// charts, diagram references) is not a run and is left alone.
func (s *Slide) Runs() ([]*Run, error) {
	if s.parsed {
		return s.runs, nil
	}
	raw, err := s.deck.readPart(s.part)
	if err != nil {
		return nil, err
	}
	s.raw = raw

	for i := 0; ; {
		rs := bytes.Index(raw[i:], runOpen)
		if rs < 0 {
			break
		}
		rs += i
		re := bytes.Index(raw[rs:], runClose)
		if re < 0 {
			return nil, fmt.Errorf("%s: unterminated a:r element", s.part)
		}
		re += rs
		run, err := s.parseRunText(raw[rs:re], rs)
		if err != nil {
			return nil, err
		}
		if run != nil {
			s.runs = append(s.runs, run)
		}
		i = re + len(runClose)
	}
	s.parsed = true
	return s.runs, nil
}

// parseRunText locates the <a:t> element within one run. base is the offset
// of the run within the slide part.
func (s *Slide) parseRunText(runSeg []byte, base int) (*Run, error) {
	ts := indexTextElement(runSeg)
	if ts < 0 {
		return nil, nil // run without a text element carries no text
	}
	rest := runSeg[ts:]
	gt := bytes.IndexByte(rest, '>')
	if gt < 0 {
		return nil, fmt.Errorf("%s: malformed a:t element", s.part)
	}
	if rest[gt-1] == '/' {
		// Self-closed empty element: the span covers the whole tag so a
		// later SetText can expand it to an open/close pair.
		return &Run{slide: s, start: base + ts, end: base + ts + gt + 1, empty: true}, nil
	}
	textStart := base + ts + gt + 1
	ce := bytes.Index(s.raw[textStart:], tClose)
	if ce < 0 {
		return nil, fmt.Errorf("%s: unterminated a:t element", s.part)
	}
	text, err := unescapeText(s.raw[textStart : textStart+ce])
	if err != nil {
		return nil, fmt.Errorf("%s: decode run text: %w", s.part, err)
	}
	return &Run{slide: s, start: textStart, end: textStart + ce, text: text}, nil
}

// serializeIfDirty rebuilds the slide part with mutated run texts spliced
// into the original bytes. Returns false when nothing changed.
func (s *Slide) serializeIfDirty() ([]byte, bool) {
	if !s.parsed {
		return nil, false
	}
	dirty := false
	for _, r := range s.runs {
		if r.dirty {
			dirty = true
			break
		}
	}
	if !dirty {
		return nil, false
	}

	var buf bytes.Buffer
	buf.Grow(len(s.raw) + 256)
	prev := 0
	for _, r := range s.runs {
		if !r.dirty {
			continue
		}
		buf.Write(s.raw[prev:r.start])
		if r.empty {
			buf.WriteString("<a:t>")
			escapeText(&buf, r.text)
			buf.WriteString("</a:t>")
		} else {
			escapeText(&buf, r.text)
		}
		prev = r.end
	}
	buf.Write(s.raw[prev:])
	return buf.Bytes(), true
}

// indexTextElement finds the start of the <a:t> element in a run segment.
// A bare prefix match is not enough: run properties can contain elements
// like <a:tint> that share the prefix.
func indexTextElement(seg []byte) int {
	for i := 0; ; {
		ts := bytes.Index(seg[i:], tOpen)
		if ts < 0 {
			return -1
		}
		ts += i
		next := ts + len(tOpen)
		if next < len(seg) {
			switch seg[next] {
			case '>', '/', ' ', '\t', '\n', '\r':
				return ts
			}
		}
		i = next
	}
}

// unescapeText decodes XML character data, entities included.
func unescapeText(b []byte) (string, error) {
	doc := make([]byte, 0, len(b)+7)
	doc = append(doc, "<t>"...)
	doc = append(doc, b...)
	doc = append(doc, "</t>"...)
	var v struct {
		S string `xml:",chardata"`
	}
	if err := xml.Unmarshal(doc, &v); err != nil {
		return "", err
	}
	return v.S, nil
}

func escapeText(buf *bytes.Buffer, s string) {
	// xml.EscapeText never fails on a bytes.Buffer.
	_ = xml.EscapeText(buf, []byte(s))
}
