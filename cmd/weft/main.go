// Weft CLI - run parallel arithmetic programs from files or a REPL.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/weft-lang/weft"
	"github.com/weft-lang/weft/history"
	"github.com/weft-lang/weft/manifest"
	"github.com/weft-lang/weft/preprocess"
	"github.com/weft-lang/weft/vm"
)

var log = commonlog.GetLogger("weft")

func main() {
	verbose := flag.Bool("v", false, "Verbose output (instruction tracing)")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	expr := flag.String("e", "", "Evaluate a single expression and print the result")
	disasm := flag.Bool("d", false, "Disassemble instead of executing")
	output := flag.String("o", "", "Compile to a program image instead of executing")
	noHistory := flag.Bool("no-history", false, "Do not record REPL history")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: weft [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a Weft program from a .weft source file or a .wbc program image.\n")
		fmt.Fprintf(os.Stderr, "With no file, runs the manifest entry point or starts a REPL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  weft prog.weft            # Preprocess, compile and run\n")
		fmt.Fprintf(os.Stderr, "  weft -e '1 + 2 * 3'       # Evaluate one expression\n")
		fmt.Fprintf(os.Stderr, "  weft -o prog.wbc prog.weft  # Compile to a program image\n")
		fmt.Fprintf(os.Stderr, "  weft -d prog.weft         # Show the compiled bytecode\n")
		fmt.Fprintf(os.Stderr, "  weft -i                   # Start REPL\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if *expr != "" {
		result, err := weft.Eval(preprocess.Expand(*expr, ""))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(result)
		return
	}

	path := flag.Arg(0)
	if path == "" && !*interactive {
		// Fall back to the manifest entry point when the working directory
		// has one.
		m, err := manifest.LoadIfPresent(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		path = m.EntryPath()
	}

	if path != "" {
		if err := runFile(path, *verbose, *disasm, *output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	repl(*verbose, *noHistory)
}

// runFile executes, disassembles, or compiles a source file or program
// image.
func runFile(path string, trace, disasm bool, output string) error {
	program, err := loadProgram(path)
	if err != nil {
		return err
	}

	if disasm {
		fmt.Print(vm.DisassembleProgram(program))
		return nil
	}

	if output != "" {
		if err := vm.WriteImage(output, program); err != nil {
			return err
		}
		log.Infof("wrote %s (%d instructions)", output, len(program.Code))
		return nil
	}

	machine := vm.New(program.Code)
	machine.Trace = trace
	for name, addr := range program.Functions {
		machine.RegisterFunction(name, addr)
	}
	if err := machine.Execute(); err != nil {
		return err
	}
	fmt.Println(machine.Result())
	return nil
}

// loadProgram compiles a source file, or reads it directly when it is a
// program image.
func loadProgram(path string) (*vm.Program, error) {
	if filepath.Ext(path) == ".wbc" {
		return vm.ReadImage(path)
	}

	source, err := preprocess.ExpandFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return weft.CompileProgram(source)
}

// repl reads lines from stdin and evaluates each one as a program. Fatal
// core errors are reported without terminating the read loop.
func repl(trace, noHistory bool) {
	var store *history.Store
	if !noHistory {
		s, err := history.OpenDefault()
		if err != nil {
			log.Warningf("history disabled: %v", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	fmt.Println("Weft REPL. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		program, err := weft.CompileProgram(preprocess.Expand(line, ""))
		if err != nil {
			fmt.Println(err)
			continue
		}
		machine := vm.New(program.Code)
		machine.Trace = trace
		for name, addr := range program.Functions {
			machine.RegisterFunction(name, addr)
		}
		if err := machine.Execute(); err != nil {
			fmt.Println(err)
			continue
		}

		result := machine.Result()
		fmt.Println(result)
		if store != nil {
			if err := store.Append(line, result); err != nil {
				log.Warningf("recording history: %v", err)
			}
		}
	}
}
