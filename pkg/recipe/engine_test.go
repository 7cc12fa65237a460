package recipe

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		res, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if res == nil || res.Graph == nil {
			t.Fatal("expected non-nil result with graph")
		}
		if res.Graph.NodeCount() != 0 || len(res.Jobs) != 0 {
			t.Errorf("expected empty result, got %d nodes, %d jobs", res.Graph.NodeCount(), len(res.Jobs))
		}
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	eng := NewEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res.Graph.NodeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes", res.Graph.NodeCount())
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	source := `(defmesh "bar" (translate (box 10 2 2) 1 0 0))`

	var first []string
	for i := 0; i < 3; i++ {
		res, evalErrs, err := eng.Evaluate(source)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: err=%v evalErrs=%v", i, err, evalErrs)
		}
		var ids []string
		for _, id := range res.Graph.Roots {
			ids = append(ids, string(id))
		}
		if i == 0 {
			first = ids
			continue
		}
		if strings.Join(ids, ",") != strings.Join(first, ",") {
			t.Errorf("iteration %d: root IDs %v differ from %v", i, ids, first)
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// A channel that never sends exercises the timeout path without
	// needing a program that loops forever.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short line format", "line 3: bad thing", 3, "bad thing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
