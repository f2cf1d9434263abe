// Package pptxtest builds minimal but structurally valid .pptx archives
// for tests: a presentation part, slide parts with text shapes and optional
// tables, and the relationship plumbing between them.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Slide describes the generated content of one slide.
type Slide struct {
	// Texts become one text shape with one paragraph per entry, each
	// holding a single run.
	Texts []string
	// Table, when non-empty, becomes a graphic-frame table with one run
	// per cell, row-major.
	Table [][]string
	// WithNotes adds a notes-slide relationship to the slide part.
	WithNotes bool
}

const (
	nsDecls = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`

	relNS       = "http://schemas.openxmlformats.org/package/2006/relationships"
	officeRelNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Archive renders the slides into an in-memory .pptx package.
func Archive(slides ...Slide) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	add := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}

	var types strings.Builder
	types.WriteString(xml.Header)
	types.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	types.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	types.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	types.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	for i := range slides {
		fmt.Fprintf(&types, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	types.WriteString(`</Types>`)
	add("[Content_Types].xml", types.String())

	add("_rels/.rels", xml.Header+
		`<Relationships xmlns="`+relNS+`">`+
		`<Relationship Id="rId1" Type="`+officeRelNS+`/officeDocument" Target="ppt/presentation.xml"/>`+
		`</Relationships>`)

	var sldIDs, presRels strings.Builder
	presRels.WriteString(xml.Header)
	presRels.WriteString(`<Relationships xmlns="` + relNS + `">`)
	presRels.WriteString(`<Relationship Id="rId1" Type="` + officeRelNS + `/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range slides {
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="%s/slide" Target="slides/slide%d.xml"/>`, i+2, officeRelNS, i+1)
	}
	presRels.WriteString(`</Relationships>`)
	add("ppt/presentation.xml", xml.Header+
		`<p:presentation `+nsDecls+`><p:sldIdLst>`+sldIDs.String()+`</p:sldIdLst></p:presentation>`)
	add("ppt/_rels/presentation.xml.rels", presRels.String())

	add("ppt/slideMasters/slideMaster1.xml", xml.Header+`<p:sldMaster `+nsDecls+`/>`)
	add("ppt/slideLayouts/slideLayout1.xml", xml.Header+`<p:sldLayout `+nsDecls+`/>`)

	for i, s := range slides {
		add(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slideXML(s))
		add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRels(s, i+1))
		if s.WithNotes {
			add(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", i+1),
				xml.Header+`<p:notes `+nsDecls+`/>`)
		}
	}

	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteFile writes an archive of the given slides to path.
func WriteFile(path string, slides ...Slide) error {
	return os.WriteFile(path, Archive(slides...), 0o644)
}

func slideXML(s Slide) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<p:sld ` + nsDecls + `><p:cSld><p:spTree>`)

	if len(s.Texts) > 0 {
		b.WriteString(`<p:sp><p:txBody><a:bodyPr/>`)
		for _, t := range s.Texts {
			b.WriteString(`<a:p><a:r><a:rPr lang="fi" b="1"/><a:t>`)
			b.WriteString(escape(t))
			b.WriteString(`</a:t></a:r></a:p>`)
		}
		b.WriteString(`</p:txBody></p:sp>`)
	}

	if len(s.Table) > 0 {
		b.WriteString(`<p:graphicFrame><a:graphic><a:graphicData><a:tbl>`)
		for _, row := range s.Table {
			b.WriteString(`<a:tr>`)
			for _, cell := range row {
				b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:rPr lang="fi"/><a:t>`)
				b.WriteString(escape(cell))
				b.WriteString(`</a:t></a:r></a:p></a:txBody></a:tc>`)
			}
			b.WriteString(`</a:tr>`)
		}
		b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	}

	b.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func slideRels(s Slide, n int) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="` + relNS + `">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + officeRelNS + `/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	if s.WithNotes {
		fmt.Fprintf(&b, `<Relationship Id="rId2" Type="%s/notesSlide" Target="../notesSlides/notesSlide%d.xml"/>`, officeRelNS, n)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
