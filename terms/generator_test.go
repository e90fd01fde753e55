package terms

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestGenerateParsesStrictJSON(t *testing.T) {
	gen := NewGenerator(&fakeLLM{response: `["bitcoin price", "crypto market", "blockchain"]`}, 5, 0)

	got := gen.Generate(context.Background(), "bitcoin", "script", 5)
	want := []string{"bitcoin price", "crypto market", "blockchain"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("terms = %v, want %v", got, want)
	}
}

func TestGenerateRepairsBracketedSubstring(t *testing.T) {
	response := "Sure! Here are your terms:\n[\"bitcoin chart\", \"trading floor\"]\nHope that helps."
	gen := NewGenerator(&fakeLLM{response: response}, 5, 0)

	got := gen.Generate(context.Background(), "bitcoin", "script", 2)
	want := []string{"bitcoin chart", "trading floor"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("terms = %v, want %v", got, want)
	}
}

func TestGenerateAcceptsWrongArity(t *testing.T) {
	// Three terms requested, two returned: arity is not enforced as long as
	// every element is a string.
	gen := NewGenerator(&fakeLLM{response: `["one", "two"]`}, 5, 0)

	got := gen.Generate(context.Background(), "x", "script", 3)
	if len(got) != 2 {
		t.Fatalf("terms = %v, want the 2 returned terms", got)
	}
}

func TestGenerateFallbackOnPermanentFailure(t *testing.T) {
	f := &fakeLLM{err: errors.New("quota exceeded")}
	gen := NewGenerator(f, 3, 0)

	got := gen.Generate(context.Background(), "bitcoin", "script", 5)
	if len(got) != 5 {
		t.Fatalf("fallback length = %d, want 5", len(got))
	}
	for i, term := range got {
		want := fmt.Sprintf("bitcoin %d", i+1)
		if term != want {
			t.Fatalf("terms[%d] = %q, want %q", i, term, want)
		}
	}
	if f.calls != 3 {
		t.Fatalf("calls = %d, want 3", f.calls)
	}
}

func TestGenerateFallbackOnNonStringElements(t *testing.T) {
	gen := NewGenerator(&fakeLLM{response: `["ok", 7, "also ok"]`}, 2, 0)

	got := gen.Generate(context.Background(), "eth", "script", 2)
	want := []string{"eth 1", "eth 2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("terms = %v, want fallback %v", got, want)
	}
}

func TestFallbackRange(t *testing.T) {
	for _, amount := range []int{1, 5, 50} {
		got := Fallback("subj", amount)
		if len(got) != amount {
			t.Fatalf("amount %d: length = %d", amount, len(got))
		}
		if got[amount-1] != fmt.Sprintf("subj %d", amount) {
			t.Fatalf("amount %d: last = %q", amount, got[amount-1])
		}
	}
}
