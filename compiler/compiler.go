// Package compiler turns the shape of a query chain into an executable
// Program.  A compile builds a plan, rewrites and analyzes it to a fixed
// point, lets the pipeline decide loops and arrays, renders the plan into a
// codegen unit and hands the unit to a backend.
package compiler

import (
	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/compiler/kernel"
	"github.com/brimdata/zjit/compiler/pipeline"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/compiler/rewrite"
	"github.com/brimdata/zjit/compiler/semantic"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
	"github.com/brimdata/zjit/zfmt"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

type Compiler struct {
	catalog *tag.Catalog
	engine  *rewrite.Engine
	kernel  *kernel.Kernel
	backend codegen.Backend
	logger  *zap.Logger
}

func New(c *tag.Catalog, engine *rewrite.Engine, k *kernel.Kernel, backend codegen.Backend, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		catalog: c,
		engine:  engine,
		kernel:  k,
		backend: backend,
		logger:  logger,
	}
}

// NewStandard wires the standard rules, analyzer and kernel of c to backend.
func NewStandard(c *tag.Catalog, backend codegen.Backend, logger *zap.Logger) *Compiler {
	engine := rewrite.NewEngine(rewrite.Standard(c), semantic.Standard(c), logger)
	return New(c, engine, kernel.Standard(c), backend, logger)
}

func (c *Compiler) Catalog() *tag.Catalog {
	return c.catalog
}

// Compile compiles the shape of t.  Only the tags of t's chain matter; the
// returned Program runs any chain of the same shape.  An error of kind
// zqe.Unsupported means the shape should be interpreted instead.  Any other
// error is a compiler defect.
func (c *Compiler) Compile(t *query.Terminal) (*Program, error) {
	p, err := c.plan(t)
	if err != nil {
		return nil, err
	}
	unit, refs, err := Render(p, c.kernel)
	if err != nil {
		return nil, err
	}
	exec, err := c.backend.Compile(unit)
	if err != nil {
		return nil, zqe.E(zqe.Internal, err)
	}
	prog := &Program{
		ID:   ksuid.New(),
		Refs: refs,
		Exec: exec,
		Unit: unit,
	}
	c.logger.Info("Compiled query shape",
		zap.Stringer("id", prog.ID),
		zap.String("original", tag.Format(p.Original)),
		zap.String("plan", p.String()),
	)
	return prog, nil
}

func (c *Compiler) plan(t *query.Terminal) (*plan.Plan, error) {
	p := plan.New(c.catalog, t)
	mods := c.engine.Run(p)
	c.logger.Debug("rewrite converged", zap.Int("mods", mods), zap.Stringer("plan", p))
	if err := pipeline.Run(p, c.kernel, c.logger); err != nil {
		return nil, err
	}
	return p, nil
}

// Explanation is what explain prints about one shape.
type Explanation struct {
	Original string
	// Simplified is the rewritten chain without synthetic nodes and Plan
	// is the chain as rendered.
	Simplified string
	Plan       string
	Tree       string
	Source     string
}

// Explain runs every stage of a compile except the backend.
func (c *Compiler) Explain(t *query.Terminal) (*Explanation, error) {
	p, err := c.plan(t)
	if err != nil {
		return nil, err
	}
	unit, _, err := Render(p, c.kernel)
	if err != nil {
		return nil, err
	}
	return &Explanation{
		Original:   tag.Format(p.Original),
		Simplified: tag.Format(p.Real()),
		Plan:       p.String(),
		Tree:       p.Tree(),
		Source:     zfmt.Unit(unit),
	}, nil
}
