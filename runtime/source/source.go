// Package source is the backend that runs the rendered Go text of a unit in
// an embedded interpreter.  It is slower than the vm backend but executes
// exactly the program that "zjit explain" prints, which makes it the
// reference when the two disagree.
package source

import (
	"fmt"

	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/zfmt"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
)

type Backend struct {
	logger *zap.Logger
}

var _ codegen.Backend = (*Backend)(nil)

func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{logger: logger}
}

func (b *Backend) Compile(u *codegen.Unit) (codegen.Executor, error) {
	text := zfmt.Unit(u)
	// Each unit gets its own interpreter since every unit declares the
	// same package and entry point.
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, err
	}
	if _, err := i.Eval(text); err != nil {
		b.logger.Error("Rendered unit rejected", zap.Error(err), zap.String("source", text))
		return nil, fmt.Errorf("source backend: %w", err)
	}
	v, err := i.Eval(zfmt.Package + "." + u.Func.Name)
	if err != nil {
		return nil, fmt.Errorf("source backend: %w", err)
	}
	fn, ok := v.Interface().(func([]any) any)
	if !ok {
		return nil, fmt.Errorf("source backend: %s has type %s", u.Func.Name, v.Type())
	}
	return codegen.ExecutorFunc(fn), nil
}
