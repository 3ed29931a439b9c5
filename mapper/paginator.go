package mapper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

// Page is a paging request and its answer. Index is a row offset.
type Page struct {
	Index int            `json:"index"`
	Size  int            `json:"size"`
	Count int64          `json:"count"`
	Items []sqldb.RowMap `json:"items"`
}

var (
	selectFromRe  = regexp.MustCompile(`(?is)\bselect\b.*?\bfrom\b`)
	orderByRe     = regexp.MustCompile(`(?i)\border\s+by\b`)
	placeholderRe = regexp.MustCompile(`\?|\$\d+|(^|[^:]):[A-Za-z_]`)
)

// CountQuery derives the count statement of a single-level select: the
// projection up to the first `from` becomes `count(1) as count`, and a
// trailing `order by` is dropped unless a placeholder follows it.
// Keywords match case-insensitively; the rest of the text is kept as is.
func CountQuery(sqlText string) string {
	loc := selectFromRe.FindStringIndex(sqlText)
	if loc == nil {
		return sqlText
	}
	out := sqlText[:loc[0]] + "select count(1) as count from" + sqlText[loc[1]:]
	if ob := orderByRe.FindStringIndex(out); ob != nil {
		if !placeholderRe.MatchString(out[ob[1]:]) {
			out = out[:ob[0]]
		}
	}
	return out
}

// Paginator runs the count query and, for a non-empty result, the windowed query.
type Paginator struct {
	exec   *Executor
	counts *CountCache // optional
}

func NewPaginator(exec *Executor, counts *CountCache) *Paginator {
	return &Paginator{exec: exec, counts: counts}
}

// Paginate fills page.Count and, when it is positive, page.Items.
func (p *Paginator) Paginate(ctx context.Context, sqlText string, page *Page, params map[string]any) (*Page, error) {
	if page == nil || page.Index < 0 || page.Size < 0 {
		return nil, ErrInvalidPage
	}
	count, err := p.count(ctx, CountQuery(sqlText), params)
	if err != nil {
		return nil, err
	}
	page.Count = count
	page.Items = nil
	if count == 0 {
		return page, nil
	}
	// own line, so a trailing line comment cannot swallow it
	windowed := sqlText + "\n" + sqldb.LimitClause(p.exec.h.DBType(), page.Index, page.Size)
	res, err := p.exec.Execute(ctx, windowed, sqldb.QuerySelect, params)
	if err != nil {
		return nil, err
	}
	page.Items = res.Rows
	return page, nil
}

// Forget drops the cached count of sqlText so the next Paginate counts again.
// It is a no-op without a count cache.
func (p *Paginator) Forget(ctx context.Context, sqlText string, params map[string]any) error {
	if p.counts == nil {
		return nil
	}
	return p.counts.Forget(ctx, CountQuery(sqlText), params)
}

func (p *Paginator) count(ctx context.Context, countSQL string, params map[string]any) (int64, error) {
	if p.counts != nil {
		if n, ok := p.counts.Get(ctx, countSQL, params); ok {
			return n, nil
		}
	}
	res, err := p.exec.Execute(ctx, countSQL, sqldb.QuerySelect, params)
	if err != nil {
		return 0, err
	}
	n, err := countOf(res.Row())
	if err != nil {
		return 0, err
	}
	if p.counts != nil {
		p.counts.Set(ctx, countSQL, params, n)
	}
	return n, nil
}

// countOf reads the count column of the first row. Engines may report the
// alias in another case and the value as int64, float, string or bytes.
func countOf(row sqldb.RowMap) (int64, error) {
	if row == nil {
		return 0, nil
	}
	v, ok := row["count"]
	if !ok {
		for k, val := range row {
			if strings.EqualFold(k, "count") {
				v, ok = val, true
				break
			}
		}
	}
	if !ok || v == nil {
		return 0, nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("count value %v: %w", v, err)
	}
	return n, nil
}
