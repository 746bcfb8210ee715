package cursorpaging

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// Paginate applies the page request to the dataset: the filter, rule and
// keyset predicates, the ORDER BY of the positions and a limit of
// PageSize()+1. Returns an error if the request is invalid.
func Paginate(db *gorm.DB, req *PageRequest) (*gorm.DB, error) {
	err := req.Validate()
	if err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	db = applyCondition(db, req.PageCondition())
	db = db.Order(req.Positions().ToSQL())

	return db.Limit(DatasetLimit(req)), nil
}

func applyCondition(db *gorm.DB, c Condition) *gorm.DB {
	if c == nil {
		return db
	}

	return db.Clauses(c.Expression())
}

// GormRepository loads pages of E with gorm.
type GormRepository[E any] struct {
	db      *gorm.DB
	scopes  []func(*gorm.DB) *gorm.DB
	getters Getters[E]
	logger  *slog.Logger
}

var _ Repository[struct{}] = (*GormRepository[struct{}])(nil)

func NewGormRepository[E any](db *gorm.DB) *GormRepository[E] {
	return &GormRepository[E]{
		db:     db,
		logger: slog.Default(),
	}
}

// WithScopes adds scopes applied to every query, e.g. tenant restrictions
// or joins.
func (r *GormRepository[E]) WithScopes(scopes ...func(*gorm.DB) *gorm.DB) *GormRepository[E] {
	r.scopes = append(r.scopes, scopes...)

	return r
}

func (r *GormRepository[E]) WithGetters(getters Getters[E]) *GormRepository[E] {
	r.getters = getters

	return r
}

func (r *GormRepository[E]) WithLogger(logger *slog.Logger) *GormRepository[E] {
	r.logger = logger

	return r
}

func (r *GormRepository[E]) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(E)).Scopes(r.scopes...)
}

// LoadPage implements Repository.
func (r *GormRepository[E]) LoadPage(ctx context.Context, req *PageRequest) (*Page[E], error) {
	err := req.Validate()
	if err != nil {
		return nil, fmt.Errorf("cannot load page: %w", err)
	}

	req, err = ResolveTotalCount(ctx, r, req)
	if err != nil {
		return nil, err
	}

	query, err := Paginate(r.query(ctx), req)
	if err != nil {
		return nil, err
	}

	var rows []E
	if err = query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cannot load page: %w", err)
	}

	page, err := NewPage(req, rows, r.getters)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "page loaded",
		slog.Int("size", page.Size()),
		slog.Bool("has_next", page.HasNext()),
		slog.Bool("first_page", req.IsFirstPage()),
	)

	return page, nil
}

// Count implements Repository. Positions of the request are ignored.
func (r *GormRepository[E]) Count(ctx context.Context, req *PageRequest) (int64, error) {
	if req == nil {
		return 0, fmt.Errorf("%w: page request is nil", ErrInvalidRequest)
	}

	var count int64
	err := applyCondition(r.query(ctx), req.CountCondition()).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("cannot count: %w", err)
	}

	return count, nil
}
