package mapper

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is one statement entry of a mapping document: its attributes and
// trimmed text body.
type Element struct {
	Name  string
	Attrs map[string]string
	Text  string
}

// Document is a parsed mapping document without its root wrapper: the root's
// child elements grouped by tag, tags kept in order of first appearance.
type Document struct {
	Tags     []string
	Elements map[string][]Element
}

// ParseDocument reads a mapping document such as
//
//	<mapper>
//	  <select id="findByAge" single="false">select * from users where age > :age</select>
//	  <raw id="touch">update users set seen = 1 where id = :id</raw>
//	</mapper>
//
// Text nested inside a statement element (including CDATA) is concatenated
// into its body.
func ParseDocument(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{Elements: map[string][]Element{}}

	depth := 0
	var cur *Element
	var body strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse mapping document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				cur = &Element{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
				for _, a := range t.Attr {
					cur.Attrs[a.Name.Local] = a.Value
				}
				body.Reset()
			}
		case xml.EndElement:
			if depth == 2 && cur != nil {
				cur.Text = strings.TrimSpace(body.String())
				if _, seen := doc.Elements[cur.Name]; !seen {
					doc.Tags = append(doc.Tags, cur.Name)
				}
				doc.Elements[cur.Name] = append(doc.Elements[cur.Name], *cur)
				cur = nil
			}
			depth--
		case xml.CharData:
			if depth >= 2 && cur != nil {
				body.Write(t)
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("parse mapping document: unbalanced elements")
	}
	return doc, nil
}
