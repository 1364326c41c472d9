package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// xmlTextRules describes where text lives in an office XML part.
type xmlTextRules struct {
	// run reports whether character data inside this element is document text.
	run func(local string) bool
	// paragraph reports whether the end of this element ends a line.
	paragraph func(local string) bool
	// inline maps empty elements to the text they stand for (ODF <text:s/>, <text:tab/>).
	inline map[string]string
}

var ooxmlRules = xmlTextRules{
	run:       func(local string) bool { return local == "t" },
	paragraph: func(local string) bool { return local == "p" },
	inline:    map[string]string{"tab": "\t", "br": "\n"},
}

var odfRules = xmlTextRules{
	run:       func(local string) bool { return local == "p" || local == "h" },
	paragraph: func(local string) bool { return local == "p" || local == "h" },
	inline:    map[string]string{"s": " ", "tab": "\t", "line-break": "\n"},
}

func extractDOCX(content []byte) (string, error) {
	parts, err := readZipParts(content, func(name string) bool {
		return strings.HasPrefix(name, "word/document") && strings.HasSuffix(name, ".xml")
	})
	if err != nil {
		return "", fmt.Errorf("DOCX: %w", err)
	}
	// some writers name the main part document2.xml; the standard name wins when both exist
	main := parts[:1]
	for _, p := range parts {
		if p.name == "word/document.xml" {
			main = []zipPart{p}
		}
	}
	return joinParts(main, ooxmlRules)
}

func extractPPTX(content []byte) (string, error) {
	parts, err := readZipParts(content, func(name string) bool {
		return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
	})
	if err != nil {
		return "", fmt.Errorf("PPTX: %w", err)
	}
	// slide10 after slide9
	sort.SliceStable(parts, func(i, j int) bool { return slideNumber(parts[i].name) < slideNumber(parts[j].name) })
	return joinParts(parts, ooxmlRules)
}

func extractODF(content []byte) (string, error) {
	parts, err := readZipParts(content, func(name string) bool { return name == "content.xml" })
	if err != nil {
		return "", fmt.Errorf("OpenDocument: %w", err)
	}
	return joinParts(parts, odfRules)
}

type zipPart struct {
	name string
	data []byte
}

func readZipParts(content []byte, match func(name string) bool) ([]zipPart, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a zip: %w", err)
	}
	var parts []zipPart
	for _, f := range zr.File {
		if !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		parts = append(parts, zipPart{name: f.Name, data: data})
	}
	if len(parts) == 0 {
		return nil, errors.New("no document content found")
	}
	return parts, nil
}

func joinParts(parts []zipPart, rules xmlTextRules) (string, error) {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		text, err := xmlText(p.data, rules)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", p.name, err)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// xmlText walks an XML document and collects the text selected by rules.
func xmlText(data []byte, rules xmlTextRules) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var b strings.Builder
	depth, para := 0, 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if rules.paragraph(t.Name.Local) {
				para++
			}
			if rules.run(t.Name.Local) {
				depth++
			} else if s, ok := rules.inline[t.Name.Local]; ok && (depth > 0 || para > 0) {
				b.WriteString(s)
			}
		case xml.EndElement:
			if rules.run(t.Name.Local) && depth > 0 {
				depth--
			}
			if rules.paragraph(t.Name.Local) && para > 0 {
				para--
				b.WriteByte('\n')
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}
	return collapseBlankLines(b.String()), nil
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func slideNumber(name string) int {
	n := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	v, err := strconv.Atoi(n)
	if err != nil {
		return 1 << 30
	}
	return v
}
