// Package memo shares executors between units whose entry functions render
// to the same source text.  Distinct chain shapes often simplify to one plan
// (sorted().reverse() and sortedReverse(), say) and there is no reason to
// build the same executor twice.
package memo

import (
	"sync"

	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/zfmt"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type entry struct {
	source string
	exec   codegen.Executor
}

type Backend struct {
	next   codegen.Backend
	logger *zap.Logger

	// mu serializes a miss with the compile that fills it so two units
	// of equal text never both reach next.
	mu    sync.Mutex
	cache *lru.Cache[uint64, *entry]
}

var _ codegen.Backend = (*Backend)(nil)

func New(next codegen.Backend, size int, logger *zap.Logger) (*Backend, error) {
	cache, err := lru.New[uint64, *entry](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		next:   next,
		logger: logger,
		cache:  cache,
	}, nil
}

func (b *Backend) Compile(u *codegen.Unit) (codegen.Executor, error) {
	source := zfmt.Func(u.Func)
	key := xxhash.Sum64String(source)
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.cache.Get(key); ok {
		if e.source == source {
			b.logger.Debug("memo hit", zap.Uint64("fingerprint", key))
			return e.exec, nil
		}
		b.logger.Warn("memo fingerprint collision", zap.Uint64("fingerprint", key))
	}
	exec, err := b.next.Compile(u)
	if err != nil {
		return nil, err
	}
	b.cache.Add(key, &entry{source: source, exec: exec})
	return exec, nil
}

// Len returns the number of executors currently remembered.
func (b *Backend) Len() int {
	return b.cache.Len()
}
