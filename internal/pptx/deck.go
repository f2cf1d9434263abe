package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
	contentTypesPart = "[Content_Types].xml"

	slideRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	slideCT      = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
)

// Deck is an opened .pptx package. Untouched parts pass through to Save
// byte-identical; only slide text spans and the handful of bookkeeping
// parts touched by Duplicate are ever rewritten.
type Deck struct {
	zr    *zip.Reader
	parts map[string][]byte // modified or appended parts, by archive name
	added []string          // appended archive names, in append order

	slides   []*Slide
	maxSldID int // largest sldId seen in sldIdLst
}

// relationships mirrors an OPC .rels part.
type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// Open reads a .pptx file into memory and resolves the ordered slide list
// from the presentation part and its relationships.
func Open(pathname string) (*Deck, error) {
	data, err := os.ReadFile(pathname)
	if err != nil {
		return nil, fmt.Errorf("read presentation: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open presentation archive: %w", err)
	}

	d := &Deck{zr: zr, parts: make(map[string][]byte)}

	relData, err := d.readPart(presentationRels)
	if err != nil {
		return nil, err
	}
	var rels relationships
	if err := xml.Unmarshal(relData, &rels); err != nil {
		return nil, fmt.Errorf("parse presentation relationships: %w", err)
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		if r.Type == slideRelType {
			targets[r.ID] = resolveTarget(r.Target)
		}
	}

	presData, err := d.readPart(presentationPart)
	if err != nil {
		return nil, err
	}
	order, maxID, err := parseSlideOrder(presData)
	if err != nil {
		return nil, err
	}
	d.maxSldID = maxID

	for _, rid := range order {
		part, ok := targets[rid]
		if !ok {
			return nil, fmt.Errorf("slide relationship %s not found", rid)
		}
		if !d.hasPart(part) {
			return nil, fmt.Errorf("slide part %s missing from archive", part)
		}
		d.slides = append(d.slides, &Slide{deck: d, part: part})
	}
	return d, nil
}

// Slides returns the slides in deck order. Duplicate appends to this list.
func (d *Deck) Slides() []*Slide { return d.slides }

// Save writes the package to path. The write is all-or-nothing: the archive
// is assembled in memory, written to a temp file and renamed into place.
func (d *Deck) Save(pathname string) error {
	serialized := make(map[string][]byte)
	for _, s := range d.slides {
		if b, ok := s.serializeIfDirty(); ok {
			serialized[s.part] = b
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]bool)
	for _, f := range d.zr.File {
		seen[f.Name] = true
		switch {
		case serialized[f.Name] != nil:
			if err := writeEntry(zw, f.Name, serialized[f.Name]); err != nil {
				return err
			}
		case d.parts[f.Name] != nil:
			if err := writeEntry(zw, f.Name, d.parts[f.Name]); err != nil {
				return err
			}
		default:
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy part %s: %w", f.Name, err)
			}
		}
	}
	for _, name := range d.added {
		if seen[name] {
			continue
		}
		b := serialized[name]
		if b == nil {
			b = d.parts[name]
		}
		if err := writeEntry(zw, name, b); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(pathname), ".pptrans-*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmpName, pathname); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, b []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	return nil
}

func (d *Deck) hasPart(name string) bool {
	if _, ok := d.parts[name]; ok {
		return true
	}
	for _, f := range d.zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// readPart returns the current bytes of a part, honoring pending modifications.
func (d *Deck) readPart(name string) ([]byte, error) {
	if b, ok := d.parts[name]; ok {
		return b, nil
	}
	for _, f := range d.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("read part %s: %w", name, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("part %s not found in archive", name)
}

// resolveTarget maps a presentation-relative relationship target to an
// archive name ("slides/slide1.xml" -> "ppt/slides/slide1.xml").
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("ppt", target)
}

// parseSlideOrder extracts the ordered r:id list and the largest numeric
// slide id from the sldIdLst of a presentation part.
func parseSlideOrder(presData []byte) (order []string, maxID int, err error) {
	dec := xml.NewDecoder(bytes.NewReader(presData))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sldId" {
			continue
		}
		var rid string
		for _, a := range se.Attr {
			if a.Name.Local != "id" {
				continue
			}
			if a.Name.Space == "" {
				if n, err := strconv.Atoi(a.Value); err == nil && n > maxID {
					maxID = n
				}
			} else {
				rid = a.Value
			}
		}
		if rid == "" {
			return nil, 0, fmt.Errorf("sldId without relationship id")
		}
		order = append(order, rid)
	}
	return order, maxID, nil
}

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// nextSlideNumber returns one past the highest slideN.xml in the package,
// counting parts appended by earlier Duplicate calls.
func (d *Deck) nextSlideNumber() int {
	max := 0
	scan := func(name string) {
		if m := slidePartRe.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	for _, f := range d.zr.File {
		scan(f.Name)
	}
	for _, name := range d.added {
		scan(name)
	}
	return max + 1
}
