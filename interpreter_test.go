package corrosion

import (
	"bufio"
	"os"
	"strings"
	"testing"
)

// runCaptured runs src as a full program, returning everything written to
// stdout via `print` and the final statement's value.
func runCaptured(t *testing.T, src string) (string, Value) {
	t.Helper()
	prog, perr := Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	c := NewChecker()
	env := NewTypeEnv(nil)
	if err := c.CheckProgram(prog, env, nil); err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	ip := NewInterpreter()
	ip.Out = w
	ip.Types = c.Unifier()
	valueEnv := NewValueEnv(nil)

	v, rerr := ip.EvalProgram(prog, valueEnv)
	w.Close()
	if rerr != nil {
		t.Fatalf("unexpected runtime error: %v", rerr)
	}

	var out strings.Builder
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out.WriteString(sc.Text())
		out.WriteByte('\n')
	}
	return out.String(), v
}

// runExpectRuntimeError runs src and returns the runtime error it produces,
// failing the test if none occurs.
func runExpectRuntimeError(t *testing.T, src string) *RuntimeError {
	t.Helper()
	prog, perr := Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	c := NewChecker()
	env := NewTypeEnv(nil)
	if err := c.CheckProgram(prog, env, nil); err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}
	ip := NewInterpreter()
	ip.Out = os.Stdout
	ip.Types = c.Unifier()
	_, rerr := ip.EvalProgram(prog, NewValueEnv(nil))
	if rerr == nil {
		t.Fatalf("expected a runtime error for %q", src)
	}
	return rerr
}

func Test_Interpreter_FactorialViaFix(t *testing.T) {
	out, _ := runCaptured(t, `
let fact = fix(fn(self){ fn(n: Int){ if n == 0 { 1 } else { n * self(n - 1) } } });
print(fact(5));
`)
	if out != "120\n" {
		t.Fatalf("got %q", out)
	}
}

func Test_Interpreter_FactorialViaNamedFnSugar(t *testing.T) {
	out, _ := runCaptured(t, `
fn factorial(n: Int) -> Int { if n == 0 { 1 } else { n * factorial(n - 1) } }
print(factorial(6));
`)
	if out != "720\n" {
		t.Fatalf("got %q", out)
	}
}

func Test_Interpreter_NestedForLoopsPrintPairs(t *testing.T) {
	out, _ := runCaptured(t, `
for i in [1, 2] {
  for j in [10, 20] {
    print((i, j));
  };
};
`)
	want := "(1, 10)\n(1, 20)\n(2, 10)\n(2, 20)\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func Test_Interpreter_CaseOverInlInr(t *testing.T) {
	out, _ := runCaptured(t, `
let describe = fn(v){ case v of inl n => n * 2 | inr s => length(s) };
print(describe(inl(21)));
print(describe(inr("hello")));
`)
	want := "42\n5\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func Test_Interpreter_FixBasedListSum(t *testing.T) {
	out, _ := runCaptured(t, `
let sum = fix(fn(self){ fn(xs){ if xs == [] { 0 } else { head(xs) + self(tail(xs)) } } });
print(sum([1, 2, 3, 4, 5]));
`)
	if out != "15\n" {
		t.Fatalf("got %q", out)
	}
}

func Test_Interpreter_DivisionByZero(t *testing.T) {
	err := runExpectRuntimeError(t, `print(1 / 0);`)
	if !strings.Contains(err.Error(), "Division by zero") {
		t.Fatalf("got %q", err.Error())
	}
}

func Test_Interpreter_HeadOfEmptyList(t *testing.T) {
	err := runExpectRuntimeError(t, `let xs: List Int = []; print(head(xs));`)
	if !strings.Contains(err.Error(), "head of empty list") {
		t.Fatalf("got %q", err.Error())
	}
}

func Test_Interpreter_TailOfEmptyList(t *testing.T) {
	err := runExpectRuntimeError(t, `let xs: List Int = []; print(tail(xs));`)
	if !strings.Contains(err.Error(), "tail of empty list") {
		t.Fatalf("got %q", err.Error())
	}
}

func Test_Interpreter_ClosureScopeHygiene(t *testing.T) {
	out, _ := runCaptured(t, `
let makeAdder = fn(x: Int){ fn(y: Int){ x + y } };
let addFive = makeAdder(5);
let x = 1000;
print(addFive(2));
`)
	if out != "7\n" {
		t.Fatalf("got %q, want closure to keep its captured 'x' independent of the later shadowing let", out)
	}
}

func Test_Interpreter_CurriedBinaryPrimitive(t *testing.T) {
	out, _ := runCaptured(t, `
let prepend = cons(0);
print(prepend([1, 2, 3]));
print(range(2, 5));
print(concat("foo", "bar"));
print(char("hello", 1));
`)
	want := "[0, 1, 2, 3]\n[2, 3, 4]\nfoobar\ne\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func Test_Interpreter_PrintFormatsListsAndPairs(t *testing.T) {
	out, _ := runCaptured(t, `print(([1, 2], "x"));`)
	if out != "([1, 2], x)\n" {
		t.Fatalf("got %q", out)
	}
}

func Test_Interpreter_TypeOfRuntimeValues(t *testing.T) {
	out, _ := runCaptured(t, `
print(type(5));
print(type(true));
print(type("s"));
print(type(()));
print(type([1, 2, 3]));
print(type((1, "a")));
print(type(inl(5)));
`)
	want := "Int\nBool\nString\nUnit\nList Int\n(Int, String)\n(Int + unknown)\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

// type(e) renders e's statically inferred type, not a reconstruction from
// the runtime value — this is the only way an Arrow's parameter/result
// types are recoverable, since a Closure value carries no type tag.
func Test_Interpreter_TypeOfFunctionRendersArrowSignature(t *testing.T) {
	out, _ := runCaptured(t, `
let double = fn(x: Int){ x * 2 };
print(type(double));
`)
	if out != "Int -> Int\n" {
		t.Fatalf("got %q", out)
	}
}
