package gen

import (
	"errors"
	"go/token"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// DefaultHeader is the first line of every generated file.
const DefaultHeader = "Code generated by typedsql. DO NOT EDIT."

// Config holds the settings of one generation run.
type Config struct {
	// Target is the output directory.
	Target string
	// Package is the name of the generated package. Defaults to the base
	// name of Target.
	Package string
	// Header is written as a comment at the top of each generated file.
	Header string
	// Workers bounds the number of files rendered in parallel.
	Workers int
	// Logger receives a debug record per written file.
	Logger *slog.Logger
}

// NewConfig returns a Config with defaults applied and the options on top.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  DefaultHeader,
		Workers: runtime.GOMAXPROCS(0),
		Logger:  slog.Default(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.Target == "" {
		return nil, NewConfigError("Target", nil, "missing target directory")
	}
	if c.Package == "" {
		c.Package = packageName(filepath.Base(c.Target))
	}
	if !token.IsIdentifier(c.Package) {
		return nil, NewConfigError("Package", c.Package, "not a valid package name")
	}
	return c, nil
}

// packageName derives a package name from a directory name: letters,
// digits and underscores are kept and lowercased, and a name that does
// not start with a letter is prefixed with "p".
func packageName(dir string) string {
	name := strings.ToLower(strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, dir))
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "p" + name
	}
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the name of the generated package.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithWorkers sets the number of files rendered in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger of the generator.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
