package sqldb

import (
	"fmt"
	"reflect"
	"strings"
)

var PlaceholderPrefixForDBType = map[string]byte{
	"mysql":  '?',
	"pgsql":  '$',
	"mssql":  '@',
	"oracle": ':',
	"sqlite": 0, // NOTE: sqlite supports all of them
}

func PlaceholderGF(baseChar byte) func(...int) string { // vararg for optional
	if baseChar == '?' || baseChar == 0 {
		return func(_ ...int) string {
			return "?"
		}
	}
	return func(index ...int) string {
		var i int
		if len(index) == 0 {
			i = 1
		} else {
			i = index[0]
		}
		return fmt.Sprintf("%c%d", baseChar, i)
	}
}

// BindNamed rewrites `:name` replacements into the positional placeholders of prefix
// and collects the matching args in order of appearance.
//   - slice and array values (except []byte) expand to one placeholder per element
//   - an empty slice renders as NULL
//   - `::` casts and anything inside quotes are copied untouched
//
// A name without a value in params is an error wrapping ErrUnboundParam.
func BindNamed(query string, params map[string]any, prefix byte) (string, []any, error) {
	placeholder := PlaceholderGF(prefix)
	var b strings.Builder
	b.Grow(len(query) + 16)
	args := make([]any, 0, len(params))
	ord := 1

	var quote byte
	i := 0
	for i < len(query) {
		c := query[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			b.WriteByte(c)
			i++
			continue
		case c == ':' && i+1 < len(query) && query[i+1] == ':':
			b.WriteString("::")
			i += 2
			continue
		case c == ':' && i+1 < len(query) && isNameStart(query[i+1]):
			j := i + 1
			for j < len(query) && isNameChar(query[j]) {
				j++
			}
			name := query[i+1 : j]
			v, ok := params[name]
			if !ok {
				return "", nil, fmt.Errorf("%w: %s", ErrUnboundParam, name)
			}
			elems, isList := listElems(v)
			if !isList {
				b.WriteString(placeholder(ord))
				ord++
				args = append(args, v)
			} else if len(elems) == 0 {
				b.WriteString("NULL")
			} else {
				for k, e := range elems {
					if k > 0 {
						b.WriteString(", ")
					}
					b.WriteString(placeholder(ord))
					ord++
					args = append(args, e)
				}
			}
			i = j
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), args, nil
}

// NamedParams lists the distinct `:name` replacements of query in order of appearance.
func NamedParams(query string) []string {
	var names []string
	seen := map[string]bool{}
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == ':' && i+1 < len(query) && query[i+1] == ':':
			i++
		case c == ':' && i+1 < len(query) && isNameStart(query[i+1]):
			j := i + 1
			for j < len(query) && isNameChar(query[j]) {
				j++
			}
			if name := query[i+1 : j]; !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i = j - 1
		}
	}
	return names
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func listElems(v any) ([]any, bool) {
	switch v.(type) {
	case nil, []byte, string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, true
}
