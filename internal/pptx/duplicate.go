package pptx

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const notesRelSuffix = "/notesSlide"

var (
	sldIdLstCloseRe = regexp.MustCompile(`</(?:([A-Za-z0-9]+):)?sldIdLst>`)
	relIDRe         = regexp.MustCompile(`Id="rId(\d+)"`)
)

// Duplicate appends a copy of slide i to the end of the deck and returns
// the index of the new slide. The copy is a new slide part with identical
// bytes and a copy of the source slide's relationships, so it resolves the
// same layout and master and shares no mutable state with its source. The
// notes-slide relationship is not carried over: a notes part belongs to
// exactly one slide.
func (d *Deck) Duplicate(i int) (int, error) {
	if i < 0 || i >= len(d.slides) {
		return 0, fmt.Errorf("duplicate: slide index %d out of range [0,%d)", i, len(d.slides))
	}
	src := d.slides[i]

	srcBytes, err := d.readPart(src.part)
	if err != nil {
		return 0, err
	}
	relsBytes, err := d.readPart(relsName(src.part))
	if err != nil {
		return 0, fmt.Errorf("duplicate %s: %w", src.part, err)
	}

	num := d.nextSlideNumber()
	newPart := fmt.Sprintf("ppt/slides/slide%d.xml", num)
	newRels := relsName(newPart)

	filteredRels, err := copyRelationships(relsBytes)
	if err != nil {
		return 0, fmt.Errorf("duplicate %s: %w", src.part, err)
	}

	rid, err := d.addPresentationRel(newPart)
	if err != nil {
		return 0, err
	}
	if err := d.addSlideID(rid); err != nil {
		return 0, err
	}
	if err := d.addContentTypeOverride(newPart); err != nil {
		return 0, err
	}

	cp := make([]byte, len(srcBytes))
	copy(cp, srcBytes)
	d.parts[newPart] = cp
	d.parts[newRels] = filteredRels
	d.added = append(d.added, newPart, newRels)

	d.slides = append(d.slides, &Slide{deck: d, part: newPart})
	return len(d.slides) - 1, nil
}

// relsName maps "ppt/slides/slide3.xml" to "ppt/slides/_rels/slide3.xml.rels".
func relsName(part string) string {
	slash := strings.LastIndex(part, "/")
	return part[:slash] + "/_rels" + part[slash:] + ".rels"
}

// copyRelationships rebuilds a slide .rels part, dropping the notes-slide
// relationship.
func copyRelationships(relsBytes []byte) ([]byte, error) {
	var rels relationships
	if err := xml.Unmarshal(relsBytes, &rels); err != nil {
		return nil, fmt.Errorf("parse slide relationships: %w", err)
	}
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels.Rels {
		if strings.HasSuffix(r.Type, notesRelSuffix) {
			continue
		}
		b.WriteString(`<Relationship Id="` + r.ID + `" Type="` + r.Type + `" Target="` + r.Target + `"/>`)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String()), nil
}

// addPresentationRel registers the new slide part in the presentation
// relationships and returns the allocated relationship id.
func (d *Deck) addPresentationRel(part string) (string, error) {
	data, err := d.readPart(presentationRels)
	if err != nil {
		return "", err
	}
	max := 0
	for _, m := range relIDRe.FindAllSubmatch(data, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n > max {
			max = n
		}
	}
	rid := fmt.Sprintf("rId%d", max+1)
	target := strings.TrimPrefix(part, "ppt/")
	ins := `<Relationship Id="` + rid + `" Type="` + slideRelType + `" Target="` + target + `"/>`
	out, err := insertBefore(data, "</Relationships>", ins)
	if err != nil {
		return "", fmt.Errorf("update presentation relationships: %w", err)
	}
	d.parts[presentationRels] = out
	return rid, nil
}

// addSlideID appends a sldId entry for rid to the presentation's sldIdLst,
// reusing whatever namespace prefix the document declares for it.
func (d *Deck) addSlideID(rid string) error {
	data, err := d.readPart(presentationPart)
	if err != nil {
		return err
	}
	m := sldIdLstCloseRe.FindSubmatchIndex(data)
	if m == nil {
		return fmt.Errorf("presentation part has no closed sldIdLst element")
	}
	prefix := ""
	if m[2] >= 0 {
		prefix = string(data[m[2]:m[3]]) + ":"
	}
	if d.maxSldID < 255 {
		d.maxSldID = 255
	}
	d.maxSldID++
	ins := fmt.Sprintf(`<%ssldId id="%d" r:id="%s"/>`, prefix, d.maxSldID, rid)

	out := make([]byte, 0, len(data)+len(ins))
	out = append(out, data[:m[0]]...)
	out = append(out, ins...)
	out = append(out, data[m[0]:]...)
	d.parts[presentationPart] = out
	return nil
}

// addContentTypeOverride declares the new slide part in [Content_Types].xml.
func (d *Deck) addContentTypeOverride(part string) error {
	data, err := d.readPart(contentTypesPart)
	if err != nil {
		return err
	}
	ins := `<Override PartName="/` + part + `" ContentType="` + slideCT + `"/>`
	out, err := insertBefore(data, "</Types>", ins)
	if err != nil {
		return fmt.Errorf("update content types: %w", err)
	}
	d.parts[contentTypesPart] = out
	return nil
}

func insertBefore(data []byte, marker, ins string) ([]byte, error) {
	idx := strings.LastIndex(string(data), marker)
	if idx < 0 {
		return nil, fmt.Errorf("marker %s not found", marker)
	}
	out := make([]byte, 0, len(data)+len(ins))
	out = append(out, data[:idx]...)
	out = append(out, ins...)
	out = append(out, data[idx:]...)
	return out, nil
}
