package encoder

import (
	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/wat/internal/ast"
)

// writeSection emits (id, LEB128 size, payload). The payload is fully
// buffered first; the binary format's length prefixes rule out streaming.
func writeSection(buf *Buffer, id byte, content *Buffer) {
	buf.AppendByte(id)
	buf.WriteU32(uint32(len(content.Bytes)))
	buf.WriteBytes(content.Bytes)
}

// signatures deduplicates function signatures and maps each function to
// its type index. Scoped to one compilation and discarded with it.
type signatures struct {
	types   []ast.FuncType
	funcIdx []uint32 // function index -> type index
}

func collectSignatures(m *ast.Module) *signatures {
	sigs := &signatures{}
	for _, fn := range m.Funcs {
		ft := fn.Signature()
		found := false
		for i, existing := range sigs.types {
			if existing.Equal(ft) {
				sigs.funcIdx = append(sigs.funcIdx, uint32(i))
				found = true
				break
			}
		}
		if !found {
			sigs.funcIdx = append(sigs.funcIdx, uint32(len(sigs.types)))
			sigs.types = append(sigs.types, ft)
		}
	}
	return sigs
}

func encodeTypeSection(buf *Buffer, sigs *signatures) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(sigs.types)))
	for _, ft := range sigs.types {
		sec.AppendByte(ast.FuncTypeMarker)
		sec.WriteU32(uint32(len(ft.Params)))
		for _, p := range ft.Params {
			sec.AppendByte(byte(p))
		}
		if ft.Result != 0 {
			sec.WriteU32(1)
			sec.AppendByte(byte(ft.Result))
		} else {
			sec.WriteU32(0)
		}
	}
	writeSection(buf, ast.SectionType, sec)
}

func encodeFuncSection(buf *Buffer, sigs *signatures) {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(sigs.funcIdx)))
	for _, typeIdx := range sigs.funcIdx {
		sec.WriteU32(typeIdx)
	}
	writeSection(buf, ast.SectionFunc, sec)
}

func encodeExportSection(buf *Buffer, m *ast.Module) error {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Exports)))
	for _, e := range m.Exports {
		idx, err := refIndex(e.Func, e.Pos)
		if err != nil {
			return err
		}
		if m.FuncByIndex(idx) == nil {
			return errors.CodeGen(e.Pos, errors.KindIndexRange,
				"export %q targets function index %d out of range", e.Name, idx)
		}
		sec.WriteString(e.Name)
		sec.AppendByte(ast.KindFunc)
		sec.WriteU32(idx)
	}
	writeSection(buf, ast.SectionExport, sec)
	return nil
}

func encodeCodeSection(buf *Buffer, m *ast.Module) error {
	sec := &Buffer{}
	sec.WriteU32(uint32(len(m.Funcs)))
	for _, fn := range m.Funcs {
		code := &Buffer{}

		// All locals share one type in this subset, so they collapse
		// into a single run-length group.
		if n := len(fn.Locals); n > 0 {
			code.WriteU32(1)
			code.WriteU32(uint32(n))
			code.AppendByte(byte(ast.ValTypeI32))
		} else {
			code.WriteU32(0)
		}

		if err := encodeSeq(code, m, fn, fn.Body); err != nil {
			return err
		}
		code.AppendByte(ast.OpEnd)

		sec.WriteU32(uint32(len(code.Bytes)))
		sec.WriteBytes(code.Bytes)
	}
	writeSection(buf, ast.SectionCode, sec)
	return nil
}
