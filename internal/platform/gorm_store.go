package platform

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
)

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// FunctionFunc evaluates a stored function in Go (or portable SQL) for
// databases that cannot define it, such as SQLite.
type FunctionFunc func(ctx context.Context, db *gorm.DB, args map[string]any, dest any) error

// GormStore implements DataStore on top of GORM.
type GormStore struct {
	db        *gorm.DB
	functions map[string]FunctionFunc
}

type StoreOption func(*GormStore)

// WithFunction overrides CallFunction for name.
func WithFunction(name string, fn FunctionFunc) StoreOption {
	return func(s *GormStore) {
		s.functions[name] = fn
	}
}

func NewGormStore(db *gorm.DB, opts ...StoreOption) *GormStore {
	s := &GormStore{db: db, functions: map[string]FunctionFunc{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SQLFunction builds a FunctionFunc from a query using @named arguments.
func SQLFunction(query string) FunctionFunc {
	return func(ctx context.Context, db *gorm.DB, args map[string]any, dest any) error {
		return db.WithContext(ctx).Raw(query, args).Scan(dest).Error
	}
}

func (s *GormStore) QueryTable(ctx context.Context, q Query, dest any) (int64, error) {
	var total int64
	if q.Count {
		tx, err := s.scoped(ctx, q.Table, q.Filters)
		if err != nil {
			return 0, err
		}
		if err := tx.Count(&total).Error; err != nil {
			return 0, translate(err)
		}
	}

	tx, err := s.scoped(ctx, q.Table, q.Filters)
	if err != nil {
		return 0, err
	}
	if len(q.Columns) > 0 {
		for _, col := range q.Columns {
			if !identPattern.MatchString(col) {
				return 0, fmt.Errorf("%w: %q", ErrInvalidColumn, col)
			}
		}
		tx = tx.Select(q.Columns)
	}
	for _, o := range q.Order {
		if !identPattern.MatchString(o.Column) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColumn, o.Column)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	if q.Range != nil {
		tx = tx.Offset(q.Range.From).Limit(q.Range.To - q.Range.From + 1)
	}
	if err := tx.Find(dest).Error; err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (s *GormStore) Insert(ctx context.Context, table string, row any) error {
	if _, ok := models.New(table); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return translate(s.db.WithContext(ctx).Table(table).Create(row).Error)
}

func (s *GormStore) Update(ctx context.Context, table string, filters []Filter, values map[string]any) (int64, error) {
	if len(filters) == 0 {
		return 0, errors.New("update without filters")
	}
	for col := range values {
		if !identPattern.MatchString(col) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColumn, col)
		}
	}
	tx, err := s.scoped(ctx, table, filters)
	if err != nil {
		return 0, err
	}
	res := tx.Updates(values)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) Delete(ctx context.Context, table string, filters []Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, errors.New("delete without filters")
	}
	model, ok := models.New(table)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	tx, err := s.scoped(ctx, table, filters)
	if err != nil {
		return 0, err
	}
	res := tx.Delete(model)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) CallFunction(ctx context.Context, name string, args map[string]any, dest any) error {
	if fn, ok := s.functions[name]; ok {
		return translate(fn(ctx, s.db, args, dest))
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid function name %q", name)
	}

	names := make([]string, 0, len(args))
	for k := range args {
		if !identPattern.MatchString(k) {
			return fmt.Errorf("invalid argument name %q", k)
		}
		names = append(names, k)
	}
	sort.Strings(names)

	params := make([]string, len(names))
	for i, n := range names {
		params[i] = n + " => @" + n
	}
	query := fmt.Sprintf("SELECT %s(%s)", name, strings.Join(params, ", "))
	return translate(s.db.WithContext(ctx).Raw(query, args).Scan(dest).Error)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) scoped(ctx context.Context, table string, filters []Filter) (*gorm.DB, error) {
	model, ok := models.New(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	exprs := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		if !identPattern.MatchString(f.Column) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, f.Column)
		}
		col := clause.Column{Name: f.Column}
		switch f.Op {
		case OpEq:
			exprs = append(exprs, clause.Eq{Column: col, Value: f.Value})
		case OpNeq:
			exprs = append(exprs, clause.Neq{Column: col, Value: f.Value})
		case OpILike:
			exprs = append(exprs, clause.Expr{
				SQL:  "LOWER(?) LIKE LOWER(?)",
				Vars: []any{col, "%" + fmt.Sprint(f.Value) + "%"},
			})
		case OpIEq:
			exprs = append(exprs, clause.Expr{
				SQL:  "LOWER(?) = LOWER(?)",
				Vars: []any{col, f.Value},
			})
		case OpIn:
			exprs = append(exprs, clause.IN{Column: col, Values: toAnySlice(f.Value)})
		default:
			return nil, fmt.Errorf("unsupported filter op %d", f.Op)
		}
	}
	tx := s.db.WithContext(ctx).Model(model)
	if len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	return tx, nil
}

func toAnySlice(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
	}
	return err
}
