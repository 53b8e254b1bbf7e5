package ast

type ValType byte

const ValTypeI32 ValType = 0x7F

const BlockTypeEmpty byte = 0x40

const KindFunc byte = 0

const (
	SectionCustom byte = 0
	SectionType   byte = 1
	SectionImport byte = 2
	SectionFunc   byte = 3
	SectionTable  byte = 4
	SectionMemory byte = 5
	SectionGlobal byte = 6
	SectionExport byte = 7
	SectionStart  byte = 8
	SectionElem   byte = 9
	SectionCode   byte = 10
	SectionData   byte = 11
)

const FuncTypeMarker byte = 0x60

const (
	OpIf       byte = 0x04
	OpElse     byte = 0x05
	OpEnd      byte = 0x0B
	OpReturn   byte = 0x0F
	OpCall     byte = 0x10
	OpLocalGet byte = 0x20
	OpI32Const byte = 0x41
	OpI32Eq    byte = 0x46
	OpI32Add   byte = 0x6A
	OpI32Sub   byte = 0x6B
)
