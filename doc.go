// Package watc is a compiler from a bounded subset of the WebAssembly
// text format to binary WASM.
//
// The repository is organized into a few packages with distinct
// responsibilities:
//
//	watc/
//	├── wat/       WAT text to WASM binary compiler (public entry: wat.Compile)
//	├── runtime/   wazero-backed execution of compiled modules
//	├── errors/    structured, stage-tagged compile and run errors
//	└── cmd/watc/  command line compiler and interactive runner
//
// Most users only need wat.Compile:
//
//	wasm, err := wat.Compile(source)
//
// The runtime package is a convenience for executing the output without
// pulling in a separate host; the compiler itself never runs code.
package watc
