// Package mapper resolves named SQL templates from mapping documents and
// runs them, paged or not, next to a CRUD facade over one entity.
package mapper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"

	"github.com/zeptools/gw-mapper/db/kvdb"
	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/entity"
	"github.com/zeptools/gw-mapper/tpl"
)

// DAO binds a Handle, an optional entity and an optional mapping document.
// Template calls wait for the document to load; CRUD calls never do.
type DAO struct {
	exec   *Executor
	pager  *Paginator
	entity *entity.Entity
	loader *loader

	path     string
	registry *atomic.Pointer[Registry] // shared with views from WithHandle
	counts   *CountCache
}

type options struct {
	fs       afero.Fs
	entities *entity.Registry
	document io.Reader
	kv       kvdb.Client
	ttl      time.Duration
}

type Option func(*options)

// WithFs reads mapping documents from fsys instead of the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) { o.fs = fsys }
}

// WithEntities exposes reg to the `fields` template helper.
func WithEntities(reg *entity.Registry) Option {
	return func(o *options) { o.entities = reg }
}

// WithDocument loads the mapping document from r when no path is given.
func WithDocument(r io.Reader) Option {
	return func(o *options) { o.document = r }
}

// WithCountCache caches page counts in kv for ttl.
func WithCountCache(kv kvdb.Client, ttl time.Duration) Option {
	return func(o *options) { o.kv, o.ttl = kv, ttl }
}

// New builds a DAO. e may be nil for a template-only DAO. When templatePath
// (or WithDocument) is set, the document is loaded in the background; the
// constructor does not wait for it. Only an invalid entity fails New.
func New(h sqldb.Handle, e *entity.Entity, templatePath string, opts ...Option) (*DAO, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	if e != nil {
		if err := e.Init(); err != nil {
			return nil, err
		}
	}
	entities := o.entities
	if entities == nil {
		entities = entity.NewRegistry()
		if e != nil {
			if err := entities.Register(e); err != nil {
				return nil, err
			}
		}
	}
	var counts *CountCache
	if o.kv != nil {
		counts = NewCountCache(o.kv, o.ttl)
	}
	exec := NewExecutor(h)
	d := &DAO{
		exec:     exec,
		pager:    NewPaginator(exec, counts),
		entity:   e,
		loader:   &loader{fs: o.fs, helpers: &tpl.Helpers{Entities: entities, DBType: h.DBType()}},
		path:     templatePath,
		registry: new(atomic.Pointer[Registry]),
		counts:   counts,
	}

	reg := newRegistry()
	d.registry.Store(reg)
	switch {
	case templatePath != "":
		go d.loader.load(reg, templatePath)
	case o.document != nil:
		// read now so the caller may close r once New returns
		b, err := io.ReadAll(o.document)
		if err != nil {
			d.loader.fail(reg, "document", err)
			break
		}
		go d.loader.loadFrom(reg, "document", bytes.NewReader(b))
	default:
		reg.complete(StateUnavailable, nil, nil)
	}
	return d, nil
}

// Registry is the current statement registry.
func (d *DAO) Registry() *Registry {
	return d.registry.Load()
}

// WithHandle returns a DAO that runs on h, typically a sqldb.Tx, and shares
// this DAO's entity, statements and count cache. h must have the same DBType.
func (d *DAO) WithHandle(h sqldb.Handle) *DAO {
	exec := NewExecutor(h)
	return &DAO{
		exec:     exec,
		pager:    NewPaginator(exec, d.counts),
		entity:   d.entity,
		loader:   d.loader,
		path:     d.path,
		registry: d.registry,
		counts:   d.counts,
	}
}

func (d *DAO) Entity() *entity.Entity {
	return d.entity
}

func (d *DAO) TemplatePath() string {
	return d.path
}

// Reload parses the mapping document again and, only if it compiles, swaps
// in the new registry. A DAO without a document path is left as is.
func (d *DAO) Reload() error {
	if d.path == "" {
		return ErrNoTemplate
	}
	reg := newRegistry()
	d.loader.load(reg, d.path)
	if reg.State() != StateReady {
		return fmt.Errorf("%w: %w", ErrTemplateLoad, reg.Err())
	}
	d.registry.Store(reg)
	return nil
}

// ExecSQL runs ad-hoc SQL with named replacements.
func (d *DAO) ExecSQL(ctx context.Context, sqlText string, kind sqldb.QueryType, params map[string]any) (*Result, error) {
	return d.exec.Execute(ctx, sqlText, kind, params)
}

// SelectByPage pages ad-hoc select SQL.
func (d *DAO) SelectByPage(ctx context.Context, sqlText string, page *Page, params map[string]any) (*Page, error) {
	return d.pager.Paginate(ctx, sqlText, page, params)
}

// ForgetPageCount drops the cached count behind SelectByPage(sqlText, params),
// typically after a write that changes it.
func (d *DAO) ForgetPageCount(ctx context.Context, sqlText string, params map[string]any) error {
	return d.pager.Forget(ctx, sqlText, params)
}

// Template renders and runs the named statement. Single statements and RAW
// statements collapse to their first row. A RAW statement that reads like a
// query (select, with, call, RETURNING ...) yields its rows; any other RAW
// statement runs as an exec and reports RowsAffected with no rows.
func (d *DAO) Template(ctx context.Context, name string, params map[string]any) (*Result, error) {
	stmt, err := d.Registry().Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	sqlText, err := stmt.Render(params)
	if err != nil {
		return nil, err
	}
	res, err := d.exec.Execute(ctx, sqlText, stmt.Kind, params)
	if err != nil {
		return nil, fmt.Errorf("statement %s: %w", name, err)
	}
	if stmt.Single || stmt.Kind == sqldb.QueryRaw {
		res.collapse()
	}
	return res, nil
}

// TemplateByPage pages the named SELECT statement.
func (d *DAO) TemplateByPage(ctx context.Context, name string, page *Page, params map[string]any) (*Page, error) {
	stmt, err := d.Registry().Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	if stmt.Kind != sqldb.QuerySelect {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotSelect, name, stmt.Kind)
	}
	sqlText, err := stmt.Render(params)
	if err != nil {
		return nil, err
	}
	p, err := d.pager.Paginate(ctx, sqlText, page, params)
	if err != nil {
		return nil, fmt.Errorf("statement %s: %w", name, err)
	}
	return p, nil
}

// TemplateInto runs the named SELECT statement and scans each row into a new M.
func TemplateInto[
	M any,
	MP sqldb.Scannable[M],
](ctx context.Context, d *DAO, name string, params map[string]any) ([]*M, error) {
	stmt, err := d.Registry().Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	if stmt.Kind != sqldb.QuerySelect {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotSelect, name, stmt.Kind)
	}
	sqlText, err := stmt.Render(params)
	if err != nil {
		return nil, err
	}
	rows, err := d.exec.query(ctx, sqlText, params)
	if err != nil {
		return nil, fmt.Errorf("statement %s: %w", name, err)
	}
	return sqldb.RowsToItems[M, MP](rows)
}
