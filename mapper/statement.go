package mapper

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/tpl"
)

// StatementKinds are the element names a mapping document may declare.
var StatementKinds = map[sqldb.QueryType]struct{}{
	sqldb.QuerySelect: {},
	sqldb.QueryRaw:    {},
}

// Statement is a compiled named SQL template.
type Statement struct {
	Name   string
	Kind   sqldb.QueryType
	Single bool // collapse the result to its first row
	r      *tpl.Renderer
}

// Render produces the SQL text for params.
func (s *Statement) Render(params map[string]any) (string, error) {
	return s.r.Render(params)
}

// CompileDocument compiles every SELECT and RAW entry of doc.
// Other element names are skipped with a warning.
func CompileDocument(doc *Document, h *tpl.Helpers) (map[string]*Statement, error) {
	stmts := make(map[string]*Statement)
	for _, tag := range doc.Tags {
		kind := sqldb.QueryType(strings.ToUpper(tag))
		if _, ok := StatementKinds[kind]; !ok {
			log.Printf("[WARN][MAPPER] skipping unsupported element <%s>", tag)
			continue
		}
		for _, el := range doc.Elements[tag] {
			id := strings.TrimSpace(el.Attrs["id"])
			if id == "" {
				return nil, fmt.Errorf("<%s> without id", tag)
			}
			if _, dup := stmts[id]; dup {
				return nil, fmt.Errorf("duplicate statement id %q", id)
			}
			single := false
			if v, ok := el.Attrs["single"]; ok {
				b, err := strconv.ParseBool(strings.TrimSpace(v))
				if err != nil {
					return nil, fmt.Errorf("statement %q: bad single attribute %q", id, v)
				}
				single = b
			}
			r, err := tpl.Compile(id, el.Text, h)
			if err != nil {
				return nil, err
			}
			stmts[id] = &Statement{Name: id, Kind: kind, Single: single, r: r}
		}
	}
	return stmts, nil
}
