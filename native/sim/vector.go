package sim

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

const streamChunk = 4096

// document accumulates the pages of a vector surface.
type document struct {
	file    *os.File
	write   native.WriteFunc
	pages   [][]mark
	current []mark
	width   float64
	height  float64
	closure native.Closure
	kind    native.SurfaceType
}

// mark is one drawing operation: a verb (fill, stroke, paint) and the
// path it applies to in SVG path syntax.
type mark struct {
	verb string
	path string
}

func (d *document) draw(verb, path string) {
	d.current = append(d.current, mark{verb: verb, path: path})
}

func (d *document) showPage() {
	d.pages = append(d.pages, d.current)
	d.current = nil
}

// copyPage emits the current page and keeps drawing on top of it.
func (d *document) copyPage() {
	d.pages = append(d.pages, slices.Clone(d.current))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// render produces the document bytes. An unfinished page is emitted as the last page.
func (d *document) render() []byte {
	pages := d.pages
	if len(d.current) > 0 || len(pages) == 0 {
		pages = append(pages, d.current)
	}

	var b bytes.Buffer
	switch d.kind {
	case native.SurfaceTypePDF:
		b.WriteString("%PDF-1.7\n")
		fmt.Fprintf(&b, "%% %d page(s) %sx%s\n", len(pages), num(d.width), num(d.height))
		for i, p := range pages {
			fmt.Fprintf(&b, "%% page %d\n", i+1)
			for _, m := range p {
				fmt.Fprintf(&b, "%% %s %s\n", m.verb, m.path)
			}
		}
		b.WriteString("%%EOF\n")
	case native.SurfaceTypeSVG:
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
		fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%spt" height="%spt" viewBox="0 0 %s %s">`+"\n",
			num(d.width), num(d.height), num(d.width), num(d.height))
		for _, p := range pages {
			for _, m := range p {
				switch m.verb {
				case "stroke":
					fmt.Fprintf(&b, "<path d=%q fill=\"none\" stroke=\"black\"/>\n", m.path)
				case "paint":
					fmt.Fprintf(&b, "<rect width=\"%s\" height=\"%s\"/>\n", num(d.width), num(d.height))
				default:
					fmt.Fprintf(&b, "<path d=%q/>\n", m.path)
				}
			}
		}
		b.WriteString("</svg>\n")
	case native.SurfaceTypePS:
		b.WriteString("%!PS-Adobe-3.0\n")
		fmt.Fprintf(&b, "%%%%BoundingBox: 0 0 %s %s\n", num(d.width), num(d.height))
		fmt.Fprintf(&b, "%%%%Pages: %d\n", len(pages))
		for i, p := range pages {
			fmt.Fprintf(&b, "%%%%Page: %d %d\n", i+1, i+1)
			for _, m := range p {
				fmt.Fprintf(&b, "%% %s %s\n", m.verb, m.path)
			}
			b.WriteString("showpage\n")
		}
		b.WriteString("%%EOF\n")
	}
	return b.Bytes()
}

// emit sends body to the document's destination. It runs without the engine lock.
func (d *document) emit(body []byte) native.Status {
	if d.file != nil {
		_, werr := d.file.Write(body)
		cerr := d.file.Close()
		if werr != nil || cerr != nil {
			return status.WriteError
		}
		return status.Success
	}
	return writeChunks(d.write, d.closure, body)
}

func writeChunks(write native.WriteFunc, c native.Closure, body []byte) native.Status {
	for len(body) > 0 {
		n := min(len(body), streamChunk)
		if st := write(c, body[:n]); st != status.Success {
			return st
		}
		body = body[n:]
	}
	return status.Success
}
