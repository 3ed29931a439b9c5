// Package tpl compiles SQL templates into renderers.
//
// Templates use text/template syntax. Values should reach the SQL through
// `:name` replacements bound by the executor; template logic only shapes the
// statement. Optional parameters are tested with `index`, since a plain
// `.name` on a missing key fails the render:
//
//	select {{fields "User"}} from users where 1=1
//	{{if index . "ids"}} and id in ({{join .ids "," "id"}}){{end}}
package tpl

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/zeptools/gw-mapper/entity"
)

// Helpers is the read-only context captured by compiled renderers.
type Helpers struct {
	Entities *entity.Registry // for `fields`; nil disables it
	DBType   string           // identifier quoting of `fields`
}

// Renderer turns a parameter map into SQL text. It holds no mutable state, so
// one Renderer may be used from many goroutines.
type Renderer struct {
	name string
	t    *template.Template
}

func (r *Renderer) Name() string {
	return r.name
}

// Compile parses text once. Syntax errors and unknown functions are reported here.
func Compile(name, text string, h *Helpers) (*Renderer, error) {
	t, err := template.New(name).
		Option("missingkey=error").
		Funcs(FuncMap(h)).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("compile template %s: %w", name, err)
	}
	return &Renderer{name: name, t: t}, nil
}

// MustCompile is Compile for statically known templates.
func MustCompile(name, text string, h *Helpers) *Renderer {
	r, err := Compile(name, text, h)
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the template against params.
func (r *Renderer) Render(params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	var b strings.Builder
	if err := r.t.Execute(&b, params); err != nil {
		return "", fmt.Errorf("render template %s: %w", r.name, err)
	}
	return b.String(), nil
}

// FuncMap is the helper namespace exposed to templates.
func FuncMap(h *Helpers) template.FuncMap {
	if h == nil {
		h = &Helpers{}
	}
	return template.FuncMap{
		"join": func(seq any, opts ...string) (string, error) {
			return Join(seq, opts...)
		},
		"fields": func(entityName string) (string, error) {
			if h.Entities == nil {
				return "", fmt.Errorf("fields %q: no entity registry", entityName)
			}
			e, ok := h.Entities.Get(entityName)
			if !ok {
				return "", fmt.Errorf("fields %q: entity not registered", entityName)
			}
			return e.Projection(h.DBType), nil
		},
	}
}
