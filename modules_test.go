package corrosion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func Test_Modules_QualifiedAccess(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mathx.corr", `let double = fn(x: Int){ x * 2 };`)

	src := `import "mathx.corr" as mathx; print(mathx.double(21));`
	prog, perr := Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}

	loader := NewLoader()
	mods, rtErr := ResolveImports(prog, dir, loader)
	if rtErr != nil {
		t.Fatalf("resolve error: %v", rtErr)
	}

	checker := NewChecker()
	typeEnv := NewTypeEnv(nil)
	if err := checker.CheckProgram(prog, typeEnv, mods); err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	ip := NewInterpreter()
	ip.Out = w
	ip.Modules = mods
	if _, err := ip.EvalProgram(prog, NewValueEnv(nil)); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	w.Close()

	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	if got := string(buf[:n]); got != "42\n" {
		t.Fatalf("got %q", got)
	}
}

func Test_Modules_UndefinedMemberIsRuntimeError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mathx.corr", `let double = fn(x: Int){ x * 2 };`)

	src := `import "mathx.corr" as mathx; print(mathx.missing);`
	prog, perr := Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}

	loader := NewLoader()
	mods, rtErr := ResolveImports(prog, dir, loader)
	if rtErr != nil {
		t.Fatalf("resolve error: %v", rtErr)
	}

	ip := NewInterpreter()
	ip.Out = os.Stdout
	ip.Modules = mods
	_, err := ip.EvalProgram(prog, NewValueEnv(nil))
	if err == nil {
		t.Fatal("expected a runtime error for an undefined module member")
	}
	if got := err.Error(); !strings.Contains(got, "Undefined variable 'mathx.missing'") || !strings.Contains(got, "(known: double)") {
		t.Fatalf("got %q, want it to name the undefined member and list known exports", got)
	}
}

func Test_Modules_ImportCycleIsDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.corr", `import "b.corr" as b;`)
	writeFile(t, dir, "b.corr", `import "a.corr" as a;`)

	loader := NewLoader()
	aPath := filepath.Join(dir, "a.corr")
	_, rtErr := loader.Load("a.corr", dir, Span{})
	if rtErr == nil {
		t.Fatalf("expected an import cycle error, loading %s", aPath)
	}
}

func Test_Modules_CanonicalPathIsCachedAcrossAliases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.corr", `let value = 7;`)

	src := `
import "shared.corr" as s1;
import "shared.corr" as s2;
print(s1.value + s2.value);
`
	prog, perr := Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}

	loader := NewLoader()
	mods, rtErr := ResolveImports(prog, dir, loader)
	if rtErr != nil {
		t.Fatalf("resolve error: %v", rtErr)
	}
	if mods["shared.corr"] == nil {
		t.Fatal("expected shared.corr to resolve to a module")
	}
	if len(loader.cache) != 1 {
		t.Fatalf("expected a single cached entry for one canonical path, got %d", len(loader.cache))
	}

	checker := NewChecker()
	typeEnv := NewTypeEnv(nil)
	if err := checker.CheckProgram(prog, typeEnv, mods); err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}
}

func Test_Modules_MissingFileIsRuntimeError(t *testing.T) {
	dir := t.TempDir()
	src := `import "nope.corr" as n;`
	prog, perr := Parse(src)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	loader := NewLoader()
	if _, rtErr := ResolveImports(prog, dir, loader); rtErr == nil {
		t.Fatal("expected a runtime error for a missing import file")
	}
}
