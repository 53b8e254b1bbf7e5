// Package encoder lowers the resolved module to the binary container:
// preamble, then Type, Function, Export and Code sections in that order.
// Every reference must be resolved before Encode runs.
package encoder

import (
	"github.com/echoptic/watc/wat/internal/ast"
)

var preamble = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00} // "\0asm" + version 1 LE

// Encode assembles the final byte sequence. Nothing is emitted until every
// function encodes cleanly, so a failure never leaves partial output.
func Encode(m *ast.Module) ([]byte, error) {
	sigs := collectSignatures(m)

	buf := &Buffer{}
	buf.WriteBytes(preamble)

	if len(m.Funcs) > 0 {
		encodeTypeSection(buf, sigs)
		encodeFuncSection(buf, sigs)
	}
	if len(m.Exports) > 0 {
		if err := encodeExportSection(buf, m); err != nil {
			return nil, err
		}
	}
	if len(m.Funcs) > 0 {
		if err := encodeCodeSection(buf, m); err != nil {
			return nil, err
		}
	}

	return buf.Bytes, nil
}
