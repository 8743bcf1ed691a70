// Command rv32i loads a raw RV32I byte image (or an .s source file to
// assemble first) and runs it, either straight through, under the
// interactive debugger, or behind the HTTP/WebSocket API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"rv32iemu/api"
	"rv32iemu/asm"
	"rv32iemu/config"
	"rv32iemu/debugger"
	"rv32iemu/loader"
	"rv32iemu/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

const defaultMemorySize = 1 << 20 // 1 MiB

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum CPU cycles before halt (0 = use config default)")
		memorySize  = flag.Uint("memory-size", defaultMemorySize, "Memory size in bytes")
		entryPoint  = flag.String("entry", "", "Entry point address (hex or decimal; default .s file's _start, else config entry_point, else load address)")
		loadAddr    = flag.String("load-addr", "0x0", "Address to load the program image at")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		configPath  = flag.String("config", "", "Config file path (default: platform config dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32iemu %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *apiServer || cfg.API.Enable {
		runAPIServer(cfg, *apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	programFile := flag.Arg(0)
	data, programSymbols, err := loadProgram(programFile)
	if err != nil {
		log.Fatalf("failed to load program: %v", err)
	}

	load, err := parseAddress(*loadAddr)
	if err != nil {
		log.Fatalf("invalid load address: %v", err)
	}

	entry, err := resolveEntryPoint(*entryPoint, cfg, programSymbols, load)
	if err != nil {
		log.Fatalf("invalid entry point: %v", err)
	}

	mem := vm.NewMemory(uint32(*memorySize))
	if err := loader.LoadBytes(mem, data, load); err != nil {
		log.Fatalf("failed to load program into memory: %v", err)
	}

	regs := vm.NewRegisters()
	regs.SetPC(entry)
	cpu := vm.NewCPU(mem, regs, vm.NewDecoder())

	limit := *maxCycles
	if limit == 0 {
		limit = cfg.Execution.MaxCycles
	}

	if *verboseMode {
		fmt.Printf("Loaded %d bytes at 0x%08X, entry 0x%08X, max-cycles %d\n", len(data), load, entry, limit)
	}

	switch {
	case *tuiMode:
		dbg := debugger.NewDebugger(cpu)
		dbg.LoadSymbols(programSymbols)
		if err := debugger.RunTUI(dbg); err != nil {
			log.Fatalf("TUI error: %v", err)
		}
	case *debugMode:
		dbg := debugger.NewDebugger(cpu)
		dbg.LoadSymbols(programSymbols)
		if err := debugger.RunCLI(dbg); err != nil {
			log.Fatalf("debugger error: %v", err)
		}
	default:
		runHeadless(cpu, limit, *verboseMode)
	}
}

// loadProgram reads programFile. An ".s" extension is assembled first; any
// other file is treated as a raw little-endian byte image.
func loadProgram(path string) ([]byte, map[string]uint32, error) {
	if strings.EqualFold(filepath.Ext(path), ".s") {
		src, err := os.ReadFile(path) // #nosec G304 -- caller-specified program path
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read source file %q: %w", path, err)
		}
		result, err := asm.Assemble(string(src), 0)
		if err != nil {
			return nil, nil, fmt.Errorf("assembly failed: %w", err)
		}
		return result.Image, result.Symbols, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- caller-specified program path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read program file %q: %w", path, err)
	}
	return data, map[string]uint32{}, nil
}

func resolveEntryPoint(flagValue string, cfg *config.Config, symbols map[string]uint32, loadAddr uint32) (uint32, error) {
	if flagValue != "" {
		return parseAddress(flagValue)
	}
	if addr, ok := symbols["_start"]; ok {
		return addr, nil
	}
	if cfg.Execution.EntryPoint != "" && cfg.Execution.EntryPoint != "0x0" {
		return parseAddress(cfg.Execution.EntryPoint)
	}
	return loadAddr, nil
}

func parseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func runHeadless(cpu *vm.CPU, maxCycles uint64, verbose bool) {
	var cycles uint64
	for cycles < maxCycles || maxCycles == 0 {
		if err := cpu.Step(); err != nil {
			var halt *vm.HaltSignal
			var fault *vm.Fault

			switch {
			case errors.As(err, &halt):
				if verbose {
					fmt.Printf("Halted: %v (pc=0x%08X, cycles=%d)\n", halt, halt.PC, cycles)
				}
				return
			case errors.As(err, &fault):
				fmt.Fprintf(os.Stderr, "Fault: %v\n", fault)
				os.Exit(1)
			default:
				fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
				os.Exit(1)
			}
		}
		cycles++
	}
	fmt.Fprintf(os.Stderr, "Execution stopped: exceeded %d cycles\n", maxCycles)
	os.Exit(1)
}

func runAPIServer(cfg *config.Config, port int) {
	if port == 0 {
		port = cfg.API.Port
	}

	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("API server listening on :%d", port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server error: %v", err)
		}
	}()

	<-sigChan
	log.Println("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("error during shutdown: %v", err)
	}
	log.Println("API server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func printHelp() {
	fmt.Println("rv32iemu - a RISC-V RV32I emulator")
	fmt.Println()
	fmt.Println("Usage: rv32i [flags] <program-file>")
	fmt.Println()
	fmt.Println("<program-file> is a raw little-endian RV32I byte image, or an .s")
	fmt.Println("assembly source file (assembled in-memory before running).")
	fmt.Println()
	flag.PrintDefaults()
}
