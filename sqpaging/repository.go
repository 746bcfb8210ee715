// Package sqpaging loads pages with squirrel built SQL over pgx.
package sqpaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Alp4ka/cursorpaging"
)

var ErrBuildingQuery = errors.New("error building sql-query")

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository loads pages of E from a single table or a customised base query.
type Repository[E any] struct {
	db      Querier
	table   string
	columns []string
	base    func(sq.SelectBuilder) sq.SelectBuilder
	scanner pgx.RowToFunc[E]
	getters cursorpaging.Getters[E]
	logger  *slog.Logger
}

var _ cursorpaging.Repository[struct{}] = (*Repository[struct{}])(nil)

func New[E any](db Querier, table string) *Repository[E] {
	return &Repository[E]{
		db:      db,
		table:   table,
		columns: []string{"*"},
		scanner: pgx.RowToStructByNameLax[E],
		logger:  slog.Default(),
	}
}

// WithColumns sets the selected columns, "*" by default.
func (r *Repository[E]) WithColumns(columns ...string) *Repository[E] {
	r.columns = columns

	return r
}

// WithQuery customises the base select, e.g. to add joins or static filters.
func (r *Repository[E]) WithQuery(base func(sq.SelectBuilder) sq.SelectBuilder) *Repository[E] {
	r.base = base

	return r
}

// WithScanner replaces pgx.RowToStructByNameLax.
func (r *Repository[E]) WithScanner(scanner pgx.RowToFunc[E]) *Repository[E] {
	r.scanner = scanner

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

func (r *Repository[E]) from(columns ...string) sq.SelectBuilder {
	b := sq.Select(columns...).From(r.table)
	if r.base != nil {
		b = r.base(b)
	}

	return b.PlaceholderFormat(sq.Dollar)
}

func where(b sq.SelectBuilder, c cursorpaging.Condition) sq.SelectBuilder {
	if c == nil {
		return b
	}

	sql, args := cursorpaging.WhereSQL(c)

	return b.Where(sq.Expr(sql, args...))
}

// SelectBuilder returns the query of the page addressed by req.
func (r *Repository[E]) SelectBuilder(req *cursorpaging.PageRequest) (sq.SelectBuilder, error) {
	if err := req.Validate(); err != nil {
		return sq.SelectBuilder{}, fmt.Errorf("%w: %w", ErrBuildingQuery, err)
	}

	return where(r.from(r.columns...), req.PageCondition()).
		OrderBy(req.Positions().ToSQLSlice()...).
		Limit(uint64(cursorpaging.DatasetLimit(req))), nil
}

// CountBuilder returns the query counting rows matching the filters and
// rules of req.
func (r *Repository[E]) CountBuilder(req *cursorpaging.PageRequest) (sq.SelectBuilder, error) {
	if req == nil {
		return sq.SelectBuilder{}, fmt.Errorf("%w: %w", ErrBuildingQuery, cursorpaging.ErrInvalidRequest)
	}

	return where(r.from("count(*)"), req.CountCondition()), nil
}

// LoadPage implements cursorpaging.Repository.
func (r *Repository[E]) LoadPage(ctx context.Context, req *cursorpaging.PageRequest) (*cursorpaging.Page[E], error) {
	qb, err := r.SelectBuilder(req)
	if err != nil {
		return nil, err
	}

	req, err = cursorpaging.ResolveTotalCount(ctx, r, req)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}
	r.logger.DebugContext(ctx, "select page", slog.String("query", query), slog.Int("args", len(args)))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select page: %w", err)
	}

	out, err := pgx.CollectRows(rows, r.scanner)
	if err != nil {
		return nil, fmt.Errorf("scan page: %w", err)
	}

	return cursorpaging.NewPage(req, out, r.getters)
}

// Count implements cursorpaging.Repository.
func (r *Repository[E]) Count(ctx context.Context, req *cursorpaging.PageRequest) (int64, error) {
	qb, err := r.CountBuilder(req)
	if err != nil {
		return 0, err
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}
	r.logger.DebugContext(ctx, "count", slog.String("query", query))

	var count int64
	if err = r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("exec count: %w", err)
	}

	return count, nil
}
