// Package bunpaging loads pages with bun.
package bunpaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/Alp4ka/cursorpaging"
)

// Repository loads pages of the bun model E.
type Repository[E any] struct {
	db      bun.IDB
	query   func(*bun.SelectQuery) *bun.SelectQuery
	getters cursorpaging.Getters[E]
	logger  *slog.Logger
}

var _ cursorpaging.Repository[struct{}] = (*Repository[struct{}])(nil)

// New returns a repository backed by a *bun.DB, bun.Tx or bun.Conn.
func New[E any](db bun.IDB) *Repository[E] {
	return &Repository[E]{
		db:     db,
		logger: slog.Default(),
	}
}

// WithQuery customises every select, e.g. to add relations or static filters.
func (r *Repository[E]) WithQuery(query func(*bun.SelectQuery) *bun.SelectQuery) *Repository[E] {
	r.query = query

	return r
}

func (r *Repository[E]) WithGetters(getters cursorpaging.Getters[E]) *Repository[E] {
	r.getters = getters

	return r
}

func (r *Repository[E]) WithLogger(logger *slog.Logger) *Repository[E] {
	r.logger = logger

	return r
}

func (r *Repository[E]) newSelect(model any, c cursorpaging.Condition) *bun.SelectQuery {
	q := r.db.NewSelect().Model(model)
	if r.query != nil {
		q = r.query(q)
	}

	if c != nil {
		sql, args := cursorpaging.WhereSQL(c)
		q = q.Where(sql, args...)
	}

	return q
}

// Paginate applies the page request to q: the filter, rule and keyset
// predicates, the ORDER BY of the positions and a limit of PageSize()+1.
func Paginate(q *bun.SelectQuery, req *cursorpaging.PageRequest) (*bun.SelectQuery, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	if c := req.PageCondition(); c != nil {
		sql, args := cursorpaging.WhereSQL(c)
		q = q.Where(sql, args...)
	}

	for _, order := range req.Positions().ToSQLSlice() {
		q = q.OrderExpr(order)
	}

	return q.Limit(cursorpaging.DatasetLimit(req)), nil
}

// LoadPage implements cursorpaging.Repository.
func (r *Repository[E]) LoadPage(ctx context.Context, req *cursorpaging.PageRequest) (*cursorpaging.Page[E], error) {
	var rows []E

	q, err := Paginate(r.newSelect(&rows, nil), req)
	if err != nil {
		return nil, err
	}

	req, err = cursorpaging.ResolveTotalCount(ctx, r, req)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "select page", slog.String("query", q.String()))

	if err = q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("cannot load page: %w", err)
	}

	return cursorpaging.NewPage(req, rows, r.getters)
}

// Count implements cursorpaging.Repository.
func (r *Repository[E]) Count(ctx context.Context, req *cursorpaging.PageRequest) (int64, error) {
	if req == nil {
		return 0, fmt.Errorf("%w: page request is nil", cursorpaging.ErrInvalidRequest)
	}

	count, err := r.newSelect((*E)(nil), req.CountCondition()).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot count: %w", err)
	}

	return int64(count), nil
}
