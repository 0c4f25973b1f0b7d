// Package cache holds compiled query programs keyed by the shape of the
// chain they were compiled from.  The cache is a persistent trie behind a
// single atomic root pointer.  Readers never lock; a writer copies the path
// it changes and publishes the copy with a compare-and-swap, so inserts of
// unrelated shapes never wait on each other.  Exactly one goroutine compiles
// any given shape while the others wait for its result.
package cache

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/compiler"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

type Config struct {
	// CheckConsistency re-reads every published artifact and panics if
	// the trie does not return it.
	CheckConsistency bool
	Registerer       prometheus.Registerer
	Logger           *zap.Logger
}

type Cache struct {
	compiler *compiler.Compiler
	fallback query.Processor
	tags     int
	width    int
	check    bool
	logger   *zap.Logger
	metrics  *metrics
	root     atomic.Pointer[node]
}

// New returns an empty cache that compiles with comp and runs shapes comp
// declines with fallback.  The catalog of comp must be frozen.
func New(comp *compiler.Compiler, fallback query.Processor, conf Config) *Cache {
	if comp == nil || fallback == nil {
		panic("cache: compiler and fallback are required")
	}
	catalog := comp.Catalog()
	if !catalog.Frozen() {
		panic("cache: catalog is not frozen")
	}
	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		compiler: comp,
		fallback: fallback,
		tags:     catalog.Len(),
		width:    catalog.Len() + zjit.NumKinds,
		check:    conf.CheckConsistency,
		logger:   logger,
		metrics:  newMetrics(conf.Registerer),
	}
}

// Execute runs t with the artifact for its shape, compiling it first if no
// goroutine has yet.
func (c *Cache) Execute(t *query.Terminal) any {
	a := c.Get(t)
	t.Attach(a.Processor)
	return t.Process()
}

// Get returns the artifact for the shape of t.  On a miss the calling
// goroutine compiles the shape; goroutines that ask for the same shape in
// the meantime block until it is done.  If the compile failed, Get panics
// with the failure in every goroutine that asks.
func (c *Cache) Get(t *query.Terminal) *Artifact {
	ids := c.key(t)
	for {
		root := c.root.Load()
		e := lookup(root, ids)
		switch {
		case e == nil:
			p := &promise{done: make(chan struct{})}
			if !c.root.CompareAndSwap(root, insert(root, c.width, ids, &entry{promise: p})) {
				// Someone else published first.  Look again.
				runtime.Gosched()
				continue
			}
			c.metrics.misses.Inc()
			a := c.build(t)
			c.publish(ids, p, a)
			close(p.done)
			return c.deliver(a)
		case e.promise != nil:
			c.metrics.waits.Inc()
			<-e.promise.done
		default:
			c.metrics.hits.Inc()
			return c.deliver(e.artifact)
		}
	}
}

// Peek returns the finished artifact for the shape of t, or nil if the
// shape is unknown or still compiling.  It never blocks or compiles.
func (c *Cache) Peek(t *query.Terminal) *Artifact {
	if e := lookup(c.root.Load(), c.key(t)); e != nil {
		return e.artifact
	}
	return nil
}

// key is the trie path of t: its shape followed by the kind of its source
// elements, which the compiled code depends on.  Kinds are numbered after
// the tag ids so the two never share a slot.
func (c *Cache) key(t *query.Terminal) []int {
	return append(t.Shape(), c.tags+int(t.Source().Elem().Kind()))
}

// Len returns the number of shapes the cache knows about, including those
// being compiled.
func (c *Cache) Len() int {
	return size(c.root.Load())
}

func (c *Cache) deliver(a *Artifact) *Artifact {
	if a.Failure != nil {
		panic(a.Failure)
	}
	return a
}

// build compiles t.  It never panics: a failure of any kind is recorded in
// the artifact so that waiters see it too.
func (c *Cache) build(t *query.Terminal) (a *Artifact) {
	shape := tag.Format(t.Tags())
	a = &Artifact{ID: ksuid.New()}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Compiler panicked", zap.String("shape", shape), zap.Any("panic", r))
			a.Processor, a.Program = nil, nil
			a.Failure = zqe.Recovered(r)
		}
	}()
	c.metrics.compilations.Inc()
	prog, err := c.compiler.Compile(t)
	switch {
	case err == nil:
		a.ID = prog.ID
		a.Program = prog
		a.Processor = prog
	case zqe.IsUnsupported(err):
		c.metrics.fallbacks.Inc()
		c.logger.Info("Shape interpreted", zap.String("shape", shape), zap.Error(err))
		a.Processor = c.fallback
	default:
		c.logger.Error("Compilation failed", zap.String("shape", shape), zap.Error(err))
		a.Failure = err
	}
	return a
}

// publish replaces the promise p at ids with a.  Other shapes may be
// published concurrently, so it retries until its own swap lands.
func (c *Cache) publish(ids []int, p *promise, a *Artifact) {
	done := &entry{artifact: a}
	for {
		root := c.root.Load()
		if e := lookup(root, ids); e == nil || e.promise != p {
			panic(fmt.Sprintf("cache: promise for shape %v lost before publish", ids))
		}
		if c.root.CompareAndSwap(root, insert(root, c.width, ids, done)) {
			break
		}
		runtime.Gosched()
	}
	if c.check {
		if e := lookup(c.root.Load(), ids); e != done {
			panic(fmt.Sprintf("cache: inconsistent entry for shape %v after publish", ids))
		}
	}
}
