package typedsql

import (
	"errors"
	"fmt"

	"github.com/syssam/typedsql/dialect/sql"
	"github.com/syssam/typedsql/dialect/sql/sqlerr"
)

var (
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("typedsql: no rows")

	// ErrNotSingular matches every NotSingularError.
	ErrNotSingular = errors.New("typedsql: more than one row")

	// ErrTxStarted is returned by Transaction on a context that is already
	// bound to a transaction.
	ErrTxStarted = errors.New("typedsql: transaction already started")

	// ErrNoPrimaryKey is returned by record updates and upserts on tables
	// without a primary key.
	ErrNoPrimaryKey = sql.ErrNoPrimaryKey

	// ErrNoChanges is returned by record updates without changed fields.
	ErrNoChanges = sql.ErrNoChanges
)

// NotFoundError is returned when a statement expected to return a row
// returned none. Table is the queried table, or a label of the selection.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return "typedsql: no rows in " + e.Table
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError returns the NotFoundError of table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{Table: table}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotSingularError is returned by FetchOne when its statement returned
// more than one row.
type NotSingularError struct {
	Table string
	Rows  int
}

func (e *NotSingularError) Error() string {
	return fmt.Sprintf("typedsql: %d rows in %s, expected one", e.Rows, e.Table)
}

func (e *NotSingularError) Is(target error) bool { return target == ErrNotSingular }

// NewNotSingularError returns the NotSingularError of a statement on table
// that returned rows rows.
func NewNotSingularError(table string, rows int) *NotSingularError {
	return &NotSingularError{Table: table, Rows: rows}
}

// IsNotSingular reports whether err is, or wraps, a NotSingularError.
func IsNotSingular(err error) bool {
	return errors.Is(err, ErrNotSingular)
}

// ConstraintError is a constraint violation reported by the database.
// Name is the violated constraint, when the driver reports it.
type ConstraintError struct {
	Name string
	kind sqlerr.Kind
	err  error
}

func (e ConstraintError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("typedsql: %s constraint violated: %v", e.kind, e.err)
	}
	return fmt.Sprintf("typedsql: %s constraint %q violated", e.kind, e.Name)
}

func (e ConstraintError) Unwrap() error { return e.err }

// Kind returns the kind of the violated constraint.
func (e ConstraintError) Kind() sqlerr.Kind { return e.kind }

// AsConstraintError returns err as a ConstraintError when the driver
// reports a constraint violation, and err itself otherwise.
func AsConstraintError(err error) error {
	if err == nil || IsConstraintError(err) {
		return err
	}
	kind := sqlerr.Classify(err)
	if kind == sqlerr.None {
		return err
	}
	return ConstraintError{Name: sqlerr.ConstraintName(err), kind: kind, err: err}
}

// IsConstraintError reports whether err is, or wraps, a ConstraintError.
func IsConstraintError(err error) bool {
	return errors.As(err, new(ConstraintError))
}

// RollbackError is joined to the error of a transaction function when
// rolling the transaction back failed too.
type RollbackError struct {
	Err error
}

func (e *RollbackError) Error() string {
	return "typedsql: rollback: " + e.Err.Error()
}

func (e *RollbackError) Unwrap() error { return e.Err }

// QueryError wraps the failure of a fetch. Op names the fetch function,
// e.g. "fetch one".
type QueryError struct {
	Table string
	Op    string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("typedsql: %s from %s: %v", e.Op, e.Table, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError returns a QueryError.
func NewQueryError(table, op string, err error) *QueryError {
	return &QueryError{Table: table, Op: op, Err: err}
}

// IsQueryError reports whether err is, or wraps, a QueryError.
func IsQueryError(err error) bool {
	return errors.As(err, new(*QueryError))
}

// MutationError wraps the failure of an insert, update, upsert or delete.
type MutationError struct {
	Table string
	Op    string
	Err   error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("typedsql: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// NewMutationError returns a MutationError.
func NewMutationError(table, op string, err error) *MutationError {
	return &MutationError{Table: table, Op: op, Err: err}
}

// IsMutationError reports whether err is, or wraps, a MutationError.
func IsMutationError(err error) bool {
	return errors.As(err, new(*MutationError))
}
