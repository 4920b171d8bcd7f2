package vm_test

// End-to-end scenarios straight from spec §8 ("Concrete end-to-end
// scenarios"), driving the full pipeline (lex -> parse -> resolve ->
// analyze -> compile -> run) the way cmd/run.go does, to pin down the
// observable contract between the four core subsystems rather than
// any one package in isolation.

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/zephyrlang/zr/internal/compiler"
	"github.com/zephyrlang/zr/internal/diagnostics"
	"github.com/zephyrlang/zr/internal/lexer"
	"github.com/zephyrlang/zr/internal/parser"
	"github.com/zephyrlang/zr/internal/resolver"
	"github.com/zephyrlang/zr/internal/sema"
	"github.com/zephyrlang/zr/internal/vm"
)

// runSource drives the whole pipeline and returns the bytecode's
// stdout and any error from analysis, compilation, or execution.
func runSource(t *testing.T, src string) (string, error) {
	t.Helper()

	tokens, err := lexer.New("t.zr", src).Scan()
	if err != nil {
		return "", err
	}
	stmts, errs := parser.New("t.zr", tokens).Parse()
	if len(errs) > 0 {
		return "", errs[0]
	}
	res := resolver.New(t.TempDir())
	resolved, err := res.Resolve(stmts)
	if err != nil {
		return "", err
	}
	analyzer := sema.New()
	if err := analyzer.Analyze(resolved); err != nil {
		return "", err
	}
	bc, err := compiler.Compile(resolved, analyzer)
	if err != nil {
		return "", err
	}

	r, w, _ := os.Pipe()
	old := os.Stdout
	os.Stdout = w
	machine := vm.New()
	_, runErr := machine.Run(bc)
	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

func kindOf(err error) diagnostics.Kind {
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		return d.Kind
	}
	return ""
}

func TestMoveOfNonCopyBindingIsRejected(t *testing.T) {
	_, err := runSource(t, `
		func main() {
			let s = "hello";
			let t = s;
			print(s);
		}
	`)
	if err == nil {
		t.Fatal("expected an OwnershipError from using a moved binding")
	}
	if kindOf(err) != diagnostics.KindOwnership {
		t.Fatalf("expected KindOwnership, got %v (%v)", kindOf(err), err)
	}
}

func TestCopyIsNotMoved(t *testing.T) {
	out, err := runSource(t, `
		func main() {
			let a = 5;
			let b = a;
			print(a);
		}
	`)
	if err != nil {
		t.Fatalf("expected program to run, got %v", err)
	}
	if strings.TrimSpace(out) != "5" {
		t.Fatalf("expected stdout %q, got %q", "5", out)
	}
}

func TestMutSelfRequiresMutableReceiver(t *testing.T) {
	_, err := runSource(t, `
		struct C { x: i32 }
		impl C {
			func bump(&mut self) {
				self.x = self.x + 1;
			}
		}
		func main() {
			let c = C { x: 0 };
			c.bump();
		}
	`)
	if err == nil {
		t.Fatal("expected an OwnershipError: cannot mutably borrow immutable binding 'c'")
	}
	if kindOf(err) != diagnostics.KindOwnership {
		t.Fatalf("expected KindOwnership, got %v (%v)", kindOf(err), err)
	}
}

func TestDanglingReferenceReturnRejected(t *testing.T) {
	_, err := runSource(t, `
		func bad() -> &i32 {
			let x = 3;
			&x
		}
		func main() {
			bad();
		}
	`)
	if err == nil {
		t.Fatal("expected an OwnershipError for returning a reference to a local")
	}
	if kindOf(err) != diagnostics.KindOwnership {
		t.Fatalf("expected KindOwnership, got %v (%v)", kindOf(err), err)
	}
}

func TestDanglingReferenceBindingEscapeRejected(t *testing.T) {
	_, err := runSource(t, `
		func bad() -> &i32 {
			let x = 3;
			let r = &x;
			r
		}
		func main() {
			bad();
		}
	`)
	if err == nil {
		t.Fatal("expected an OwnershipError for returning a reference binding to a local")
	}
	if kindOf(err) != diagnostics.KindOwnership {
		t.Fatalf("expected KindOwnership, got %v (%v)", kindOf(err), err)
	}
}

func TestDanglingReferenceEscapesThroughIfBranches(t *testing.T) {
	_, err := runSource(t, `
		func bad(cond: bool) -> &i32 {
			let x = 3;
			if cond {
				&x
			} else {
				let y = 4;
				&y
			}
		}
		func main() {
			bad(true);
		}
	`)
	if err == nil {
		t.Fatal("expected an OwnershipError for a dangling reference in an if-branch's trailing expression")
	}
	if kindOf(err) != diagnostics.KindOwnership {
		t.Fatalf("expected KindOwnership, got %v (%v)", kindOf(err), err)
	}
}

func TestReferenceToParamCanBeReturned(t *testing.T) {
	_, err := runSource(t, `
		func first(x: &i32) -> &i32 {
			x
		}
		func main() {
			let v = 3;
			first(&v);
		}
	`)
	if err != nil {
		t.Fatalf("expected a reference parameter to be returnable directly, got %v", err)
	}
}

func TestAmbiguousOutputLifetimeRequiresAnnotation(t *testing.T) {
	_, err := runSource(t, `
		func pick(a: &i32, b: &i32) -> &i32 {
			a
		}
		func main() {
			let x = 1;
			let y = 2;
			pick(&x, &y);
		}
	`)
	if err == nil {
		t.Fatal("expected an OwnershipError: output lifetime cannot be inferred from two unnamed reference parameters")
	}
	if kindOf(err) != diagnostics.KindOwnership {
		t.Fatalf("expected KindOwnership, got %v (%v)", kindOf(err), err)
	}
}

func TestStdlibImportGating(t *testing.T) {
	_, err := runSource(t, `
		func main() { print(sqrt(9.0)); }
	`)
	if err == nil {
		t.Fatal("expected an ImportError for calling sqrt without importing std::math")
	}
	if kindOf(err) != diagnostics.KindImport {
		t.Fatalf("expected KindImport, got %v (%v)", kindOf(err), err)
	}

	out, err := runSource(t, `
		import std::math;
		func main() { print(sqrt(9.0)); }
	`)
	if err != nil {
		t.Fatalf("expected program to run once std::math is imported, got %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Fatalf("expected stdout %q, got %q", "3", out)
	}
}

func TestMatchOnEnumVariantWithPayload(t *testing.T) {
	out, err := runSource(t, `
		enum Opt { Some(i32), None }
		func main() {
			let o = Opt::Some(7);
			let v = match o { Opt::Some(n) => n, Opt::None => 0 };
			print(v);
		}
	`)
	if err != nil {
		t.Fatalf("expected program to run, got %v", err)
	}
	if strings.TrimSpace(out) != "7" {
		t.Fatalf("expected stdout %q, got %q", "7", out)
	}
}

func TestForLoopAccumulates(t *testing.T) {
	out, err := runSource(t, `
		func main() {
			let mut total = 0;
			for i in 0..5 {
				total = total + i;
			}
			print(total);
		}
	`)
	if err != nil {
		t.Fatalf("expected program to run, got %v", err)
	}
	if strings.TrimSpace(out) != "10" {
		t.Fatalf("expected stdout %q, got %q", "10", out)
	}
}

func TestNestedIndexAssignmentMutatesInPlace(t *testing.T) {
	out, err := runSource(t, `
		func main() {
			let mut grid = [[1, 2], [3, 4]];
			grid[1][0] = 99;
			print(grid[1][0]);
		}
	`)
	if err != nil {
		t.Fatalf("expected program to run, got %v", err)
	}
	if strings.TrimSpace(out) != "99" {
		t.Fatalf("expected stdout %q, got %q", "99", out)
	}
}

func TestStructFieldMutationThroughMutSelf(t *testing.T) {
	out, err := runSource(t, `
		struct Counter { n: i32 }
		impl Counter {
			func bump(&mut self) {
				self.n = self.n + 1;
			}
			func get(&self) -> i32 {
				self.n
			}
		}
		func main() {
			let mut c = Counter { n: 0 };
			c.bump();
			c.bump();
			print(c.get());
		}
	`)
	if err != nil {
		t.Fatalf("expected program to run, got %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("expected stdout %q, got %q", "2", out)
	}
}

func TestSharedBorrowConflictsWithMutableBorrow(t *testing.T) {
	_, err := runSource(t, `
		func main() {
			let mut x = 1;
			let r = &x;
			let m = &mut x;
			print(*r);
		}
	`)
	if err == nil {
		t.Fatal("expected an OwnershipError for a mutable borrow while a shared borrow is active")
	}
	if kindOf(err) != diagnostics.KindOwnership {
		t.Fatalf("expected KindOwnership, got %v (%v)", kindOf(err), err)
	}
}
