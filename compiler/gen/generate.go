package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/typedsql/dialect/sql"
)

// Generator writes the descriptor package of one schema: a file with the
// schema root and one file per table.
type Generator struct {
	config *Config
	schema *Schema

	mu      sync.Mutex
	written []string
}

// NewGenerator checks s and prepares its generation.
//
// Example:
//
//	g, err := gen.NewGenerator(s, gen.WithTarget("./internal/testdb"))
//	if err != nil {
//	    return err
//	}
//	if err := g.Generate(ctx); err != nil {
//	    return err
//	}
func NewGenerator(s *sql.Schema, opts ...Option) (*Generator, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	gs, err := NewSchema(s)
	if err != nil {
		return nil, err
	}
	return &Generator{config: cfg, schema: gs}, nil
}

// Generate runs the generation of s with the given options.
func Generate(ctx context.Context, s *sql.Schema, opts ...Option) error {
	g, err := NewGenerator(s, opts...)
	if err != nil {
		return err
	}
	return g.Generate(ctx)
}

// Config returns the configuration of the generator.
func (g *Generator) Config() *Config { return g.config }

// Schema returns the generator's view of the schema.
func (g *Generator) Schema() *Schema { return g.schema }

// Files returns the paths written by the last call to Generate.
func (g *Generator) Files() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.written)
}

// fileTask is a single file of the package.
type fileTask struct {
	name  string // file name, relative to the target directory
	build func() (*jen.File, error)
}

func (g *Generator) tasks() []fileTask {
	tasks := []fileTask{{
		name:  g.schema.FileName(),
		build: func() (*jen.File, error) { return g.schemaFile(), nil },
	}}
	for _, t := range g.schema.Tables {
		tasks = append(tasks, fileTask{
			name:  t.FileName(),
			build: func() (*jen.File, error) { return g.tableFile(t) },
		})
	}
	return tasks
}

// Render returns the formatted source of every file without writing it.
func (g *Generator) Render(ctx context.Context) (map[string][]byte, error) {
	var mu sync.Mutex
	out := make(map[string][]byte)
	err := g.run(ctx, false, func(name string, src []byte) error {
		mu.Lock()
		out[name] = src
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Generate renders all files in parallel and writes them to the target
// directory.
func (g *Generator) Generate(ctx context.Context) error {
	if err := os.MkdirAll(g.config.Target, 0o755); err != nil {
		return NewGenerationError("write", g.config.Target, "create output directory", err)
	}
	g.mu.Lock()
	g.written = nil
	g.mu.Unlock()
	err := g.run(ctx, true, g.writeFile)
	g.mu.Lock()
	slices.Sort(g.written)
	g.mu.Unlock()
	return err
}

func (g *Generator) run(ctx context.Context, debug bool, emit func(name string, src []byte) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Workers)
	for _, task := range g.tasks() {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			src, err := g.format(task, debug)
			if err != nil {
				return err
			}
			return emit(task.name, src)
		})
	}
	return eg.Wait()
}

// format renders a file and runs goimports over it. With debug set, the
// unformatted source of a file that fails is written next to it.
func (g *Generator) format(task fileTask, debug bool) ([]byte, error) {
	f, err := task.build()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("render", task.name, "", err)
	}
	fullPath := filepath.Join(g.config.Target, task.name)
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		if debug {
			// Errors are ignored as we're already in error state.
			debugPath := fullPath + ".error"
			_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
			return nil, NewGenerationError("format", task.name, fmt.Sprintf("unformatted written to %s", debugPath), err)
		}
		return nil, NewGenerationError("format", task.name, "", err)
	}
	return formatted, nil
}

func (g *Generator) writeFile(name string, src []byte) error {
	fullPath := filepath.Join(g.config.Target, name)
	if err := os.WriteFile(fullPath, src, 0o644); err != nil {
		return NewGenerationError("write", name, "", err)
	}
	g.config.Logger.Debug("generated file", "file", fullPath, "bytes", len(src))
	g.mu.Lock()
	g.written = append(g.written, fullPath)
	g.mu.Unlock()
	return nil
}
