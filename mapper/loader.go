package mapper

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/afero"

	"github.com/zeptools/gw-mapper/tpl"
)

// loader turns a mapping document into a completed Registry.
type loader struct {
	fs      afero.Fs
	helpers *tpl.Helpers
}

// load completes reg from the document at path. An empty path leaves the
// registry unavailable.
func (l *loader) load(reg *Registry, path string) {
	if path == "" {
		reg.complete(StateUnavailable, nil, nil)
		return
	}
	f, err := l.fs.Open(path)
	if err != nil {
		l.fail(reg, path, fmt.Errorf("open %s: %w", path, err))
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[WARN][MAPPER] close %s: %v", path, err)
		}
	}()
	l.loadFrom(reg, path, f)
}

// loadFrom completes reg from an already opened document. source only names
// it in logs.
func (l *loader) loadFrom(reg *Registry, source string, r io.Reader) {
	doc, err := ParseDocument(r)
	if err != nil {
		l.fail(reg, source, err)
		return
	}
	stmts, err := CompileDocument(doc, l.helpers)
	if err != nil {
		l.fail(reg, source, err)
		return
	}
	log.Printf("[INFO][MAPPER] loaded %d statements from %s", len(stmts), source)
	reg.complete(StateReady, stmts, nil)
}

func (l *loader) fail(reg *Registry, source string, err error) {
	log.Printf("[ERROR][MAPPER] load %s: %v", source, err)
	reg.complete(StateFailed, nil, err)
}
