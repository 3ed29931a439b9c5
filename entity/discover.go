package entity

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/zeptools/gw-mapper/db/sqldb"
	"gopkg.in/yaml.v3"
)

// DefinitionSuffixes are the file name endings Discover picks up.
var DefinitionSuffixes = []string{".entity.yaml", ".entity.yml", ".entity.json"}

// DefaultExclude is used when Discover gets no exclude list.
var DefaultExclude = []string{"node_modules", "vendor"}

// symlinked directory cycles are cut off at this depth
const maxDiscoverDepth = 32

// Discover walks root (following symlinks) and parses every entity definition
// file. Hidden entries and directories named in exclude are skipped. A file
// that fails to parse is logged and skipped; only an unreadable root is an error.
func Discover(fsys afero.Fs, root string, exclude []string) ([]*Entity, error) {
	if exclude == nil {
		exclude = DefaultExclude
	}
	skip := make(map[string]bool, len(exclude))
	for _, x := range exclude {
		skip[x] = true
	}
	if _, err := fsys.Stat(root); err != nil {
		return nil, fmt.Errorf("entity root %s: %w", root, err)
	}
	var found []*Entity
	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		if depth > maxDiscoverDepth {
			log.Printf("[WARN][ENTITY] max depth reached at %s", dir)
			return
		}
		infos, err := afero.ReadDir(fsys, dir)
		if err != nil {
			log.Printf("[ERROR][ENTITY] read dir %s: %v", dir, err)
			return
		}
		for _, info := range infos {
			name := info.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			p := path.Join(dir, name)
			if info.Mode()&fs.ModeSymlink != 0 {
				// Stat follows the link
				if info, err = fsys.Stat(p); err != nil {
					log.Printf("[ERROR][ENTITY] broken link %s: %v", p, err)
					continue
				}
			}
			if info.IsDir() {
				if !skip[name] {
					walk(p, depth+1)
				}
				continue
			}
			if !isDefinitionFile(name) {
				continue
			}
			e, err := ParseDefinition(fsys, p)
			if err != nil {
				log.Printf("[ERROR][ENTITY] load %s: %v", p, err)
				continue
			}
			found = append(found, e)
		}
	}
	walk(root, 0)
	sort.SliceStable(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

func isDefinitionFile(name string) bool {
	for _, s := range DefinitionSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ParseDefinition reads one YAML (or JSON) entity definition.
func ParseDefinition(fsys afero.Fs, p string) (*Entity, error) {
	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	var e Entity
	if err = yaml.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	if err = e.Init(); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadEntities discovers definitions under root, registers each in reg and,
// when h is not nil, creates its table if missing. Per-entity failures are
// logged and do not stop the load.
func LoadEntities(ctx context.Context, fsys afero.Fs, root string, exclude []string, reg *Registry, h sqldb.Handle) ([]*Entity, error) {
	found, err := Discover(fsys, root, exclude)
	if err != nil {
		return nil, err
	}
	loaded := make([]*Entity, 0, len(found))
	for _, e := range found {
		if err := reg.Register(e); err != nil {
			log.Printf("[ERROR][ENTITY] register %s: %v", e.Name, err)
			continue
		}
		if h != nil {
			if err := Sync(ctx, h, e); err != nil {
				log.Printf("[ERROR][ENTITY] %v", err)
				continue
			}
		}
		loaded = append(loaded, e)
	}
	log.Printf("[INFO][ENTITY] %d entities loaded from %s", len(loaded), root)
	return loaded, nil
}
