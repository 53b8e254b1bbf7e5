package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/runtime"
	"github.com/echoptic/watc/wat"
)

var errStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FF6B6B"))

func main() {
	var (
		output      = flag.String("o", "", "Output file (default: input with .wasm extension, \"-\" for stdout)")
		funcName    = flag.String("run", "", "Compile, instantiate and call this export")
		funcArgs    = flag.String("args", "", "i32 arguments for -run (comma-separated)")
		list        = flag.Bool("list", false, "Compile and list exported functions")
		verbose     = flag.Bool("v", false, "Verbose compilation logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: watc [-o out.wasm] <file.wat>")
		fmt.Fprintln(os.Stderr, "       watc -run <func> [-args 1,2] <file.wat>")
		fmt.Fprintln(os.Stderr, "       watc -i <file.wat>  (interactive mode)")
		os.Exit(1)
	}
	input := flag.Arg(0)

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		wat.SetLogger(log)
	}

	if *interactive {
		if err := runInteractive(input); err != nil {
			reportError(input, err)
			os.Exit(1)
		}
		return
	}

	if err := run(input, *output, *funcName, *funcArgs, *list); err != nil {
		reportError(input, err)
		os.Exit(1)
	}
}

func run(input, output, funcName, funcArgs string, list bool) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	wasm, err := wat.Compile(string(source))
	if err != nil {
		return err
	}

	if list {
		return listExports(wasm)
	}
	if funcName != "" {
		return callExport(wasm, funcName, funcArgs)
	}

	if output == "-" {
		_, err := os.Stdout.Write(wasm)
		return err
	}
	if output == "" {
		output = replaceExt(input, ".wasm")
	}
	if err := os.WriteFile(output, wasm, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func listExports(wasm []byte) error {
	ctx := context.Background()
	rt := runtime.New(ctx)
	defer rt.Close(ctx)

	inst, err := rt.Instantiate(ctx, wasm)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	for _, name := range inst.Exports() {
		arity, err := inst.Arity(name)
		if err != nil {
			return err
		}
		params := make([]string, arity)
		for i := range params {
			params[i] = "i32"
		}
		fmt.Printf("%s(%s)\n", name, strings.Join(params, ", "))
	}
	return nil
}

func callExport(wasm []byte, funcName, funcArgs string) error {
	args, err := parseArgs(funcArgs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt := runtime.New(ctx)
	defer rt.Close(ctx)

	inst, err := rt.Instantiate(ctx, wasm)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	result, err := inst.CallI32(ctx, funcName, args...)
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

func parseArgs(s string) ([]int32, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	args := make([]int32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = int32(v)
	}
	return args, nil
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndexByte(path, '.'); i > strings.LastIndexByte(path, '/') {
		return path[:i] + ext
	}
	return path + ext
}

// reportError prints a compile error prefixed with the input file,
// styled when stderr is a terminal.
func reportError(input string, err error) {
	msg := "Error: " + err.Error()

	var cerr *errors.Error
	if stderrors.As(err, &cerr) {
		msg = fmt.Sprintf("%s: %v", input, cerr)
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		msg = errStyle.Render(msg)
	}
	fmt.Fprintln(os.Stderr, msg)
}
