package wat

import (
	"go.uber.org/zap"

	"github.com/echoptic/watc/wat/internal/build"
	"github.com/echoptic/watc/wat/internal/encoder"
	"github.com/echoptic/watc/wat/internal/resolve"
	"github.com/echoptic/watc/wat/internal/sexpr"
	"github.com/echoptic/watc/wat/internal/token"
)

// Compile translates one WAT module form into a binary module. The first
// failing stage aborts the run; no partial output is ever returned.
func Compile(source string) ([]byte, error) {
	log := Logger()

	root, err := sexpr.Build(token.NewLexer(source))
	if err != nil {
		return nil, err
	}

	mod, err := build.Module(root)
	if err != nil {
		return nil, err
	}
	log.Debug("module built",
		zap.Int("funcs", len(mod.Funcs)),
		zap.Int("exports", len(mod.Exports)))

	if err := resolve.Module(mod); err != nil {
		return nil, err
	}

	out, err := encoder.Encode(mod)
	if err != nil {
		return nil, err
	}
	log.Debug("module encoded", zap.Int("bytes", len(out)))
	return out, nil
}
