package corrosion

import "testing"

func checkOK(t *testing.T, src string) *Checker {
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
	return c
}

func checkErr(t *testing.T, src string) *TypeError {
	t.Helper()
	prog, perr := Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	c := NewChecker()
	env := NewTypeEnv(nil)
	err := c.CheckProgram(prog, env, nil)
	if err == nil {
		t.Fatalf("expected a type error for %q", src)
	}
	return err
}

func Test_Checker_LetAndArithmetic(t *testing.T) {
	checkOK(t, `let x = 5; let y = 10; print(x + y);`)
}

func Test_Checker_StringPlusOverload(t *testing.T) {
	checkOK(t, `let s = "a" + "b"; print(s);`)
}

func Test_Checker_Redefinition(t *testing.T) {
	err := checkErr(t, `let x = 10; let x = 20;`)
	if got := err.Error(); got != "Error: Type error: Variable 'x' redefined at line 1, column 13" {
		t.Fatalf("got %q", got)
	}
}

func Test_Checker_LengthOfIntIsError(t *testing.T) {
	err := checkErr(t, `let len = length(42);`)
	want := "Error: Type error: Type mismatch at line 1, column 11: expected 'String', found 'Int'"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func Test_Checker_UndefinedVariable(t *testing.T) {
	checkErr(t, `print(missing);`)
}

func Test_Checker_IfWithoutElseMustBeUnit(t *testing.T) {
	checkErr(t, `if true { 1 };`)
}

func Test_Checker_IfElseBranchesMustUnify(t *testing.T) {
	checkErr(t, `let x = if true { 1 } else { "a" };`)
}

func Test_Checker_ForLoopIteratesLists(t *testing.T) {
	checkOK(t, `for i in [1, 2, 3] { print(i); };`)
}

func Test_Checker_ForLoopOverNonListIsError(t *testing.T) {
	checkErr(t, `for i in 5 { print(i); };`)
}

func Test_Checker_FixRequiresSelfArrow(t *testing.T) {
	checkOK(t, `
let fact = fix(fn(self){ fn(n: Int){ if n == 0 { 1 } else { n * self(n - 1) } } });
print(fact(5));
`)
}

func Test_Checker_NamedFunctionRecursion(t *testing.T) {
	checkOK(t, `
fn factorial(n: Int) -> Int { if n == 0 { 1 } else { n * factorial(n - 1) } }
print(factorial(5));
`)
}

func Test_Checker_CaseBranchesMustUnify(t *testing.T) {
	checkOK(t, `let v = inl(100); let r = case v of inl n => n * 2 | inr t => 0; print(r);`)
}

func Test_Checker_ClosureEqualityRejected(t *testing.T) {
	checkErr(t, `let f = fn(x: Int){ x }; print(f == f);`)
}

func Test_Checker_ListMixedTypesIsError(t *testing.T) {
	checkErr(t, `let xs = [1, "two", 3];`)
}

func Test_Checker_PairProjections(t *testing.T) {
	checkOK(t, `let p = (1, "a"); print(fst(p)); print(snd(p));`)
}

func Test_Checker_ConsHeadTail(t *testing.T) {
	checkOK(t, `let l = cons(1, [2, 3]); print(head(l)); print(tail(l));`)
}

func Test_Checker_FstOfNonPairIsError(t *testing.T) {
	err := checkErr(t, `let x = fst(5);`)
	want := "Error: Type error: Type mismatch at line 1, column 9: expected '(error, error)', found 'Int'"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func Test_Checker_HeadOfNonListIsError(t *testing.T) {
	err := checkErr(t, `let x = head(5);`)
	want := "Error: Type error: Type mismatch at line 1, column 9: expected 'List unknown', found 'Int'"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func Test_Checker_LetAnnotationMismatchUsesPinnedWording(t *testing.T) {
	err := checkErr(t, `let x: Int = "hello";`)
	want := "Error: Type error: Type mismatch at line 1, column 1: expected 'Int', found 'String'"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func Test_Checker_QualifiedUndefinedMemberListsKnownExports(t *testing.T) {
	prog, perr := Parse("import \"mathx.corr\" as mathx;\nprint(mathx.missing);")
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	mod := &Module{
		Name:     "mathx.corr",
		Bindings: map[string]Value{"double": IntVal(0)},
		Types:    map[string]*Ty{"double": TyArrow(TyInt(), TyInt())},
		Order:    []string{"double"},
	}
	c := NewChecker()
	env := NewTypeEnv(nil)
	err := c.CheckProgram(prog, env, map[string]*Module{"mathx.corr": mod})
	if err == nil {
		t.Fatal("expected a type error for an undefined qualified member")
	}
	want := "Error: Type error: Undefined variable 'mathx.missing' (known: double) at line 2, column 7"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
