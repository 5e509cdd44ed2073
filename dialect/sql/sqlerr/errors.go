// Package sqlerr classifies errors returned by the supported database
// drivers.
package sqlerr

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/lib/pq/pqerror"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Kind is the kind of a constraint violation.
type Kind int

// Constraint kinds.
const (
	None Kind = iota
	Unique
	ForeignKey
	Check
	NotNull
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case ForeignKey:
		return "foreign key"
	case Check:
		return "check"
	case NotNull:
		return "not null"
	}
	return "none"
}

// MySQL error numbers of constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlBadNull          = 1048
	mysqlForeignKeyParent = 1451 // cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // cannot add or update a child row
	mysqlCheckViolation   = 3819
)

// sqlStateError is implemented by drivers exposing the SQLSTATE code
// (pq, pgx).
type sqlStateError interface {
	SQLState() string
}

// Classify returns the kind of constraint violation err resulted from,
// or None.
func Classify(err error) Kind {
	if err == nil {
		return None
	}
	if pe := (*pq.Error)(nil); errors.As(err, &pe) {
		return fromSQLState(string(pe.Code))
	}
	if me := (*mysql.MySQLError)(nil); errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return Unique
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return ForeignKey
		case mysqlCheckViolation:
			return Check
		case mysqlBadNull:
			return NotNull
		}
		return None
	}
	if se := (*sqlite.Error)(nil); errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return Unique
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ForeignKey
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return Check
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return NotNull
		}
		// Connections without extended result codes only report
		// SQLITE_CONSTRAINT.
		return fromMessage(se.Error())
	}
	var ss sqlStateError
	if errors.As(err, &ss) {
		if k := fromSQLState(ss.SQLState()); k != None {
			return k
		}
	}
	return fromMessage(err.Error())
}

func fromSQLState(code string) Kind {
	switch pqerror.Code(code) {
	case pqerror.UniqueViolation:
		return Unique
	case pqerror.ForeignKeyViolation:
		return ForeignKey
	case pqerror.CheckViolation:
		return Check
	case pqerror.NotNullViolation:
		return NotNull
	}
	return None
}

// fromMessage matches the messages of drivers and wrappers that do not
// expose a typed error.
func fromMessage(msg string) Kind {
	switch {
	case containsAny(msg, "Error 1062", "violates unique constraint", "UNIQUE constraint failed"):
		return Unique
	case containsAny(msg, "Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"):
		return ForeignKey
	case containsAny(msg, "Error 3819", "violates check constraint", "CHECK constraint failed"):
		return Check
	case containsAny(msg, "Error 1048", "violates not-null constraint", "NOT NULL constraint failed"):
		return NotNull
	}
	return None
}

// IsConstraintError reports whether err resulted from any constraint
// violation.
func IsConstraintError(err error) bool { return Classify(err) != None }

// IsUniqueConstraintError reports whether err resulted from a uniqueness
// violation, e.g. a duplicate primary key.
func IsUniqueConstraintError(err error) bool { return Classify(err) == Unique }

// IsForeignKeyConstraintError reports whether err resulted from a foreign
// key violation.
func IsForeignKeyConstraintError(err error) bool { return Classify(err) == ForeignKey }

// IsCheckConstraintError reports whether err resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool { return Classify(err) == Check }

// IsNotNullConstraintError reports whether err resulted from a NULL
// written to a NOT NULL column.
func IsNotNullConstraintError(err error) bool { return Classify(err) == NotNull }

// ConstraintName returns the name of the violated constraint when the
// driver reports it (PostgreSQL only).
func ConstraintName(err error) string {
	if pe := (*pq.Error)(nil); errors.As(err, &pe) {
		return pe.Constraint
	}
	return ""
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
