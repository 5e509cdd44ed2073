package gen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSchema matches every SchemaError.
	ErrInvalidSchema = errors.New("typedsql: invalid schema")
	// ErrMissingConfig matches every ConfigError.
	ErrMissingConfig = errors.New("typedsql: invalid generator configuration")
	// ErrGenerationFailed matches every GenerationError.
	ErrGenerationFailed = errors.New("typedsql: generation failed")
)

// message joins the non-empty parts of an error message with ": ".
func message(parts ...any) string {
	s := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case nil:
		case error:
			s = append(s, p.Error())
		case string:
			if p != "" {
				s = append(s, p)
			}
		default:
			s = append(s, fmt.Sprint(p))
		}
	}
	return "typedsql: " + strings.Join(s, ": ")
}

// SchemaError reports a schema, table or column that has no valid
// descriptor code.
type SchemaError struct {
	Table   string
	Column  string
	Message string
	Cause   error
}

func (e *SchemaError) Error() string {
	var where string
	switch {
	case e.Column != "":
		where = fmt.Sprintf("column %s.%s", e.Table, e.Column)
	case e.Table != "":
		where = "table " + e.Table
	}
	return message(where, e.Message, e.Cause)
}

func (e *SchemaError) Unwrap() error { return e.Cause }

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// NewSchemaError returns a SchemaError. table and column may be empty.
func NewSchemaError(table, column, msg string, cause error) *SchemaError {
	return &SchemaError{Table: table, Column: column, Message: msg, Cause: cause}
}

// IsSchemaError reports whether err is, or wraps, a SchemaError.
func IsSchemaError(err error) bool {
	return errors.As(err, new(*SchemaError))
}

// ConfigError reports an invalid generator option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	opt := "option " + e.Option
	if e.Value != nil {
		opt += fmt.Sprintf(" (%v)", e.Value)
	}
	return message(opt, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// NewConfigError returns a ConfigError. value may be nil.
func NewConfigError(option string, value any, msg string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: msg}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	return errors.As(err, new(*ConfigError))
}

// GenerationError reports the failure of a generation phase ("render",
// "format" or "write") on a file or directory.
type GenerationError struct {
	Phase   string
	File    string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	return message(strings.TrimSpace(e.Phase+" "+e.File), e.Message, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError.
func NewGenerationError(phase, file, msg string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Message: msg, Cause: cause}
}

// IsGenerationError reports whether err is, or wraps, a GenerationError.
func IsGenerationError(err error) bool {
	return errors.As(err, new(*GenerationError))
}
