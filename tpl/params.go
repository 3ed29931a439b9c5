package tpl

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	DefaultSeparator = ","
	DefaultBaseName  = "arr"
)

// Join renders one `:_<baseName>_<i>` replacement per element of seq, joined
// by sep. opts are [sep [, baseName]].
func Join(seq any, opts ...string) (string, error) {
	sep, base := DefaultSeparator, DefaultBaseName
	if len(opts) > 0 {
		sep = opts[0]
	}
	if len(opts) > 1 {
		base = opts[1]
	}
	n, err := seqLen(seq)
	if err != nil {
		return "", fmt.Errorf("join: %w", err)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(":" + placeholderKey(base, i))
	}
	return b.String(), nil
}

// ArrayToObj pairs each element of seq with the key Join generates for it.
// The result is merged into the execution params.
func ArrayToObj(seq any, baseName ...string) (map[string]any, error) {
	base := DefaultBaseName
	if len(baseName) > 0 {
		base = baseName[0]
	}
	n, err := seqLen(seq)
	if err != nil {
		return nil, fmt.Errorf("arrayToObj: %w", err)
	}
	rv := reflect.ValueOf(seq)
	out := make(map[string]any, n)
	for i := 0; i < n; i++ {
		out[placeholderKey(base, i)] = rv.Index(i).Interface()
	}
	return out, nil
}

// MergeParams copies every map into a new one; later maps win on key clashes.
func MergeParams(ps ...map[string]any) map[string]any {
	size := 0
	for _, p := range ps {
		size += len(p)
	}
	out := make(map[string]any, size)
	for _, p := range ps {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

func placeholderKey(base string, i int) string {
	return "_" + base + "_" + strconv.Itoa(i)
}

func seqLen(seq any) (int, error) {
	if seq == nil {
		return 0, nil
	}
	rv := reflect.ValueOf(seq)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), nil
	default:
		return 0, fmt.Errorf("expected a slice or array, got %T", seq)
	}
}
