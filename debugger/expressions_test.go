package debugger

import (
	"testing"

	"rv32iemu/vm"
)

func newExprCPU() *vm.CPU {
	return vm.NewCPU(vm.NewMemory(0x30000), vm.NewRegisters(), vm.NewDecoder())
}

func TestExpressionEvaluator_Numbers(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	tests := []struct {
		name string
		expr string
		want uint32
	}{
		{"Decimal", "42", 42},
		{"Hex", "0x100", 0x100},
		{"Hex uppercase", "0X1A", 0x1A},
		{"Binary", "0b1010", 0b1010},
		{"Octal", "010", 8},
		{"Negative", "-1", 0xFFFFFFFF},
		{"Large hex", "0xFFFFFFFF", 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, c, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = 0x%08X, want 0x%08X", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Registers(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	mustSetGPR(t, c, 0, 100)
	mustSetGPR(t, c, 5, 200)
	mustSetGPR(t, c, 2, 0x1000) // sp
	mustSetGPR(t, c, 1, 0x2000) // ra
	c.Regs.SetPC(0x3000)

	tests := []struct {
		name string
		expr string
		want uint32
	}{
		{"x0", "x0", 0},
		{"x5", "x5", 200},
		{"sp", "sp", 0x1000},
		{"x2", "x2", 0x1000},
		{"ra", "ra", 0x2000},
		{"x1", "x1", 0x2000},
		{"pc", "pc", 0x3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, c, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = 0x%08X, want 0x%08X", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Symbols(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := map[string]uint32{
		"main":   0x1000,
		"loop":   0x2000,
		"_start": 0x3000,
	}

	for _, tt := range []struct {
		name string
		expr string
		want uint32
	}{
		{"main", "main", 0x1000},
		{"loop", "loop", 0x2000},
		{"_start", "_start", 0x3000},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, c, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = 0x%08X, want 0x%08X", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Memory(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()

	dataAddr := uint32(0x1000)
	symbols := map[string]uint32{"data": dataAddr}

	if err := c.Mem.StoreWord(dataAddr, 0x12345678); err != nil {
		t.Fatal(err)
	}
	if err := c.Mem.StoreWord(dataAddr+0x1000, 0xABCDEF00); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name string
		expr string
		want uint32
	}{
		{"Bracket notation", "[0x1000]", 0x12345678},
		{"Star notation", "*0x2000", 0xABCDEF00},
		{"Symbol in brackets", "[data]", 0x12345678},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, c, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = 0x%08X, want 0x%08X", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Arithmetic(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	for _, tt := range []struct {
		name string
		expr string
		want uint32
	}{
		{"Addition", "10 + 20", 30},
		{"Subtraction", "50 - 20", 30},
		{"Multiplication", "5 * 6", 30},
		{"Division", "60 / 2", 30},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, c, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = 0x%08X, want 0x%08X", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Bitwise(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	for _, tt := range []struct {
		name string
		expr string
		want uint32
	}{
		{"Left shift", "1 << 4", 16},
		{"Right shift", "16 >> 2", 4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateExpression(tt.expr, c, symbols)
			if err != nil {
				t.Fatalf("EvaluateExpression() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateExpression() = 0x%08X, want 0x%08X", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_ValueHistory(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	val1, _ := eval.EvaluateExpression("42", c, symbols)
	val2, _ := eval.EvaluateExpression("100", c, symbols)

	if eval.GetValueNumber() != 2 {
		t.Errorf("ValueNumber = %d, want 2", eval.GetValueNumber())
	}

	got1, err := eval.GetValue(1)
	if err != nil {
		t.Fatalf("GetValue(1) error = %v", err)
	}
	if got1 != val1 {
		t.Errorf("GetValue(1) = %d, want %d", got1, val1)
	}

	got2, err := eval.GetValue(2)
	if err != nil {
		t.Fatalf("GetValue(2) error = %v", err)
	}
	if got2 != val2 {
		t.Errorf("GetValue(2) = %d, want %d", got2, val2)
	}

	if _, err := eval.GetValue(999); err == nil {
		t.Error("Expected error for invalid value number")
	}
}

func TestExpressionEvaluator_BooleanEvaluation(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	mustSetGPR(t, c, 1, 42)

	for _, tt := range []struct {
		name string
		expr string
		want bool
	}{
		{"Zero is false", "0", false},
		{"Non-zero is true", "42", true},
		{"Register non-zero", "x1", true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.Evaluate(tt.expr, c, symbols)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpressionEvaluator_Errors(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	for _, tt := range []struct {
		name string
		expr string
	}{
		{"Empty expression", ""},
		{"Unknown symbol", "unknown_symbol"},
		{"Division by zero", "10 / 0"},
		{"Invalid hex", "0xGGGG"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eval.EvaluateExpression(tt.expr, c, symbols); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestExpressionEvaluator_Reset(t *testing.T) {
	eval := NewExpressionEvaluator()
	c := newExprCPU()
	symbols := make(map[string]uint32)

	eval.EvaluateExpression("42", c, symbols)
	eval.EvaluateExpression("100", c, symbols)

	if eval.GetValueNumber() != 2 {
		t.Error("Value number should be 2 before reset")
	}

	eval.Reset()

	if eval.GetValueNumber() != 0 {
		t.Error("Value number should be 0 after reset")
	}
	if len(eval.valueHistory) != 0 {
		t.Error("Value history should be empty after reset")
	}
}

func mustSetGPR(t *testing.T, c *vm.CPU, i int, v uint32) {
	t.Helper()
	if err := c.Regs.SetGPR(i, v); err != nil {
		t.Fatal(err)
	}
}
