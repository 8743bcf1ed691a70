package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"rv32iemu/vm"
)

// RunCLI runs the command-line debugger interface.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(rv32i-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			runUntilStop(dbg)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// runUntilStop steps the CPU until a breakpoint/watchpoint fires, a step
// mode completes, or the CPU halts or faults.
func runUntilStop(dbg *Debugger) {
	for dbg.Running {
		if err := dbg.CPU.Step(); err != nil {
			dbg.Running = false

			var halt *vm.HaltSignal
			var fault *vm.Fault
			switch {
			case errors.As(err, &halt):
				fmt.Printf("Program halted: %v\n", halt)
			case errors.As(err, &fault):
				fmt.Printf("Fault: %v\n", fault)
			default:
				fmt.Printf("Runtime error: %v\n", err)
			}
			break
		}

		if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
			dbg.Running = false
			fmt.Printf("Stopped: %s at pc=0x%08X\n", reason, dbg.CPU.Regs.GetPC())
			break
		}
	}
}

// RunTUI runs the terminal UI debugger.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
