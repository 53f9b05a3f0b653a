package repo

import (
	"context"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shopdb/pkg/db"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(gdb *gorm.DB) *GormRepo {
	return &GormRepo{DB: gdb}
}

// InTx runs fn against a repo bound to a single database transaction. Any
// error returned by fn rolls the transaction back.
func (r *GormRepo) InTx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return db.Ping(ctx, r.DB)
}

func (r *GormRepo) isPostgres() bool {
	return db.IsPostgres(r.DB)
}

// forUpdate adds a row lock where the engine supports one.
func (r *GormRepo) forUpdate(q *gorm.DB) *gorm.DB {
	if r.isPostgres() {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// GroupCount is one bucket of a GROUP BY count.
type GroupCount struct {
	Key   string `gorm:"column:bucket"`
	Count int64  `gorm:"column:total"`
}

func (r *GormRepo) count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// groupCount counts rows of model grouped by column. column must be a
// trusted identifier, never user input.
func (r *GormRepo) groupCount(ctx context.Context, model any, column string) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.DB.WithContext(ctx).
		Model(model).
		Select(column + " AS bucket, COUNT(*) AS total").
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func likePattern(q string) string {
	return "%" + q + "%"
}

// jsonContains reports whether have contains want the way jsonb @> does:
// objects match on a subset of keys, arrays on a subset of elements, scalars
// on equality.
func jsonContains(have, want any) bool {
	switch w := want.(type) {
	case map[string]any:
		h, ok := have.(map[string]any)
		if !ok {
			return false
		}
		for k, wv := range w {
			hv, ok := h[k]
			if !ok || !jsonContains(hv, wv) {
				return false
			}
		}
		return true
	case []any:
		h, ok := have.([]any)
		if !ok {
			return false
		}
		for _, wv := range w {
			found := false
			for _, hv := range h {
				if jsonContains(hv, wv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(have, want)
	}
}
