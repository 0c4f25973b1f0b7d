// Package stream is the fluent front end of the query engine.  A view
// collects operations into a chain; a terminal method hands the chain to the
// engine, which runs it with the compiled program for its shape.
package stream

import (
	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/cache"
	"github.com/brimdata/zjit/compiler"
	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/config"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/runtime/interp"
	"github.com/brimdata/zjit/runtime/memo"
	"github.com/brimdata/zjit/runtime/source"
	"github.com/brimdata/zjit/runtime/vm"
	"github.com/brimdata/zjit/tag"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Engine owns everything shared by the chains it runs: the tag catalog, the
// compiler and the cache.  An Engine is safe for concurrent use.
type Engine struct {
	catalog  *tag.Catalog
	compiler *compiler.Compiler
	interp   *interp.Interpreter
	cache    *cache.Cache
	logger   *zap.Logger
}

// New builds an engine from conf.  Registerer receives the cache metrics
// and may be nil.
func New(conf config.Config, registerer prometheus.Registerer, logger *zap.Logger) (*Engine, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var backend codegen.Backend
	switch conf.Backend {
	case config.BackendSource:
		backend = source.New(logger)
	default:
		backend = vm.New()
	}
	if conf.MemoSize > 0 {
		m, err := memo.New(backend, conf.MemoSize, logger)
		if err != nil {
			return nil, err
		}
		backend = m
	}
	c := tag.Standard()
	comp := compiler.NewStandard(c, backend, logger)
	in := interp.New(c, logger)
	return &Engine{
		catalog:  c,
		compiler: comp,
		interp:   in,
		cache: cache.New(comp, in, cache.Config{
			CheckConsistency: conf.CheckConsistency,
			Registerer:       registerer,
			Logger:           logger,
		}),
		logger: logger,
	}, nil
}

// NewDefault is New with the default configuration and no logging.
func NewDefault() *Engine {
	e, err := New(config.Default(), nil, nil)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Catalog() *tag.Catalog {
	return e.catalog
}

func (e *Engine) Compiler() *compiler.Compiler {
	return e.compiler
}

func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

// Execute runs t through the cache.
func (e *Engine) Execute(t *query.Terminal) any {
	return e.cache.Execute(t)
}

// Interpret runs t without compiling it.
func (e *Engine) Interpret(t *query.Terminal) any {
	return e.interp.Process(t)
}

// Of returns a view over data, whose elements may be nil.
func (e *Engine) Of(data []any) Stream {
	return e.OfType(zjit.TypeObject, data)
}

// OfType is Of for elements statically known to be of type elem or nil.
func (e *Engine) OfType(elem *zjit.Type, data []any) Stream {
	return Stream{engine: e, node: query.NewSource(e.catalog.SliceSource, elem, data)}
}

// OfNonNull is Of for data known to hold no nil elements.
func (e *Engine) OfNonNull(data []any) Stream {
	return Stream{engine: e, node: query.NewSource(e.catalog.NonNullSliceSource, zjit.TypeObject, data)}
}

func (e *Engine) OfInts(data []int) Stream {
	return Stream{engine: e, node: query.NewSource(e.catalog.IntSliceSource, zjit.TypeInt, data)}
}

func (e *Engine) OfMap(data map[any]any) MapView {
	return MapView{engine: e, node: query.NewSource(e.catalog.MapSource, zjit.TypeObject, data)}
}

func (e *Engine) OfMultimap(data map[any][]any) MultimapView {
	return MultimapView{engine: e, node: query.NewSource(e.catalog.MultimapSource, zjit.TypeObject, data)}
}
