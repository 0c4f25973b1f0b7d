package rewrite

import (
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/compiler/semantic"
	"go.uber.org/zap"
)

// A Group is an ordered list of rules.  Groups that need types run only
// after the analyzer has seen the plan.
type Group struct {
	Name       string
	NeedsTypes bool
	Rules      []Rule
}

type Engine struct {
	groups   []Group
	analyzer *semantic.Analyzer
	logger   *zap.Logger
}

func NewEngine(groups []Group, analyzer *semantic.Analyzer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{groups: groups, analyzer: analyzer, logger: logger}
}

func (e *Engine) Groups() []Group {
	return e.groups
}

// Run rewrites p to a fixed point and returns the number of mutations.  The
// analysis-independent groups run first; then the analyzer runs and the
// type-dependent groups run with re-analysis after every change.  The two
// phases alternate until the type-dependent phase changes nothing, which
// leaves p analyzed.  Running on a fixed point returns zero.
func (e *Engine) Run(p *plan.Plan) int {
	var total int
	for {
		total += e.phase(p, false)
		e.analyzer.Analyze(p)
		n := e.phase(p, true)
		total += n
		if n == 0 {
			return total
		}
	}
}

// phase repeatedly scans the chain with every group of the given kind,
// restarting after each single mutation, until one whole scan is clean.
func (e *Engine) phase(p *plan.Plan, typed bool) int {
	var mods int
	for e.step(p, typed) {
		mods++
		if typed {
			e.analyzer.Analyze(p)
		}
	}
	return mods
}

func (e *Engine) step(p *plan.Plan, typed bool) bool {
	for _, g := range e.groups {
		if g.NeedsTypes != typed {
			continue
		}
		for _, r := range g.Rules {
			for n := p.Source(); n != nil; n = n.Next() {
				if r.Apply(p, n) {
					e.logger.Debug("rewrite",
						zap.String("group", g.Name),
						zap.Stringer("rule", r),
						zap.Stringer("plan", p))
					return true
				}
			}
		}
	}
	return false
}
