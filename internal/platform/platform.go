// Package platform is the boundary to the data and auth backend. Services
// depend on Client and never on a concrete database or auth server.
package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUniqueViolation = errors.New("unique constraint violation")
	ErrUnknownTable    = errors.New("unknown table")
	ErrInvalidColumn   = errors.New("invalid column name")
	ErrInvalidToken    = errors.New("invalid token")
)

type Op int

const (
	OpEq Op = iota
	OpNeq
	OpILike
	OpIEq
	OpIn
)

// Filter is a single predicate on a column. For OpILike, Value is the raw
// substring; the store adds the wildcards. For OpIn, Value is a slice.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }

func ILike(column, substr string) Filter { return Filter{Column: column, Op: OpILike, Value: substr} }

// IEq matches column against value ignoring case.
func IEq(column, value string) Filter { return Filter{Column: column, Op: OpIEq, Value: value} }

func In[T any](column string, values []T) Filter {
	return Filter{Column: column, Op: OpIn, Value: values}
}

type Order struct {
	Column string
	Desc   bool
}

// Range is an inclusive row window, zero-based.
type Range struct {
	From int
	To   int
}

// PageRange converts a 1-based page and a page size into a Range.
func PageRange(page, limit int) *Range {
	from := (page - 1) * limit
	return &Range{From: from, To: from + limit - 1}
}

// Query describes a read against one table.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	Order   []Order
	Range   *Range
	// Count asks QueryTable to also return the number of rows matching
	// Filters, ignoring Range.
	Count bool
}

// DataStore is the row-level half of the backend.
type DataStore interface {
	// QueryTable loads matching rows into dest (a pointer to a slice of the
	// table's model). The returned count is only meaningful when q.Count is set.
	QueryTable(ctx context.Context, q Query, dest any) (int64, error)
	// Insert stores row, a pointer to the table's model, and fills generated fields.
	Insert(ctx context.Context, table string, row any) error
	// Update applies values to every row matching filters and reports how many changed.
	Update(ctx context.Context, table string, filters []Filter, values map[string]any) (int64, error)
	Delete(ctx context.Context, table string, filters []Filter) (int64, error)
	// CallFunction invokes a stored function and scans its single result into dest.
	CallFunction(ctx context.Context, name string, args map[string]any, dest any) error
	Ping(ctx context.Context) error
}

// Principal is an identity resolved by the auth provider.
type Principal struct {
	ID    uuid.UUID
	Email string
}

type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         Principal
}

type CreateUserParams struct {
	Email        string
	Password     string
	EmailConfirm bool
	UserMetadata map[string]any
}

// AuthProvider issues and validates credentials.
type AuthProvider interface {
	IntrospectToken(ctx context.Context, token string) (*Principal, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Principal, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*Principal, error)
}

// AuthError is a rejection reported by the auth provider, as opposed to a
// transport failure.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth provider: %d %s", e.Status, e.Message)
}

// Client is the full backend surface injected into services.
type Client interface {
	DataStore
	AuthProvider
}

type client struct {
	DataStore
	AuthProvider
}

func New(data DataStore, auth AuthProvider) Client {
	return &client{DataStore: data, AuthProvider: auth}
}

// FindOne returns the first row matching q, or nil when there is none.
func FindOne[T any](ctx context.Context, s DataStore, q Query) (*T, error) {
	q.Range = &Range{From: 0, To: 0}
	q.Count = false
	var rows []T
	if _, err := s.QueryTable(ctx, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

type idRow struct {
	ID uuid.UUID
}

// Exists reports whether any row matches filters on table.
func Exists(ctx context.Context, s DataStore, table string, filters ...Filter) (bool, error) {
	var rows []idRow
	_, err := s.QueryTable(ctx, Query{
		Table:   table,
		Columns: []string{"id"},
		Filters: filters,
		Range:   &Range{From: 0, To: 0},
	}, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}
