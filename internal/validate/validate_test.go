package validate

import (
	"strings"
	"testing"

	"grid-quiz-service/internal/domain"
)

func TestSanitize(t *testing.T) {
	if got := Sanitize("  hello\x00\x1fworld  "); got != "helloworld" {
		t.Fatalf("expected control chars stripped, got %q", got)
	}
	if got := Sanitize("line1\nline2\ttab"); got != "line1\nline2\ttab" {
		t.Fatalf("newline/tab must survive, got %q", got)
	}
	if got := Sanitize("\x7f"); got != "" {
		t.Fatalf("DEL must be stripped, got %q", got)
	}
}

func TestForbidden(t *testing.T) {
	cases := map[string]bool{
		"plain text":          false,
		"a < b":               true,
		"tag>":                true,
		"visit http://x":      true,
		"HTTPS is an acronym": true, // blunt substring match, kept on purpose
		"hyper text":          false,
	}
	for in, want := range cases {
		if got := Forbidden(in); got != want {
			t.Errorf("Forbidden(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestText(t *testing.T) {
	if err := Text(""); err == nil {
		t.Fatal("empty text must fail")
	}
	if err := Text(strings.Repeat("x", 101)); err == nil {
		t.Fatal("101 chars must fail")
	}
	if err := Text(strings.Repeat("x", 100)); err != nil {
		t.Fatalf("100 chars must pass: %v", err)
	}
	if err := Text("see http"); err == nil {
		t.Fatal("forbidden substring must fail")
	}
	if !domain.IsValidation(Text("")) {
		t.Fatal("expected ValidationError")
	}
}

func TestCategories(t *testing.T) {
	if err := Categories([]string{"A"}); err == nil {
		t.Fatal("one category must fail the count rule")
	}
	if err := Categories([]string{"A", "B", "C", "D", "E", "F"}); err == nil {
		t.Fatal("six categories must fail the count rule")
	}
	if err := Categories([]string{"A", "A"}); err == nil {
		t.Fatal("duplicate names must fail")
	}
	if err := Categories([]string{"A", ""}); err == nil {
		t.Fatal("empty name must fail")
	}
	if err := Categories([]string{"A", "TOOLONGNAME"}); err == nil {
		t.Fatal("nine-plus chars must fail")
	}
	if err := Categories([]string{"SCI", "ART"}); err != nil {
		t.Fatalf("valid list failed: %v", err)
	}
}

func TestMaxDifficulty(t *testing.T) {
	if err := MaxDifficulty(250); err == nil {
		t.Fatal("250 must fail")
	}
	if err := MaxDifficulty(100); err == nil {
		t.Fatal("100 must fail")
	}
	for _, n := range []int{200, 300, 400, 500} {
		if err := MaxDifficulty(n); err != nil {
			t.Fatalf("%d must pass: %v", n, err)
		}
	}
}

func TestGridFirstFailureWins(t *testing.T) {
	cats := []string{"SCI", "ART"}
	cells := map[string]map[int]domain.Cell{
		"SCI": {
			100: {Text: "q", AnswerText: "a"},
			// 200 missing: must be the first reported failure even
			// though ART has a forbidden answer too.
		},
		"ART": {
			100: {Text: "q", AnswerText: "see http"},
			200: {Text: "q", AnswerText: "a"},
		},
	}
	err := Grid(cats, 200, cells)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "SCI") || !strings.Contains(err.Error(), "200") {
		t.Fatalf("expected the missing SCI/200 cell reported first, got %q", err)
	}
}

func TestGridComplete(t *testing.T) {
	cats := []string{"SCI", "ART"}
	cells := map[string]map[int]domain.Cell{}
	for _, c := range cats {
		cells[c] = map[int]domain.Cell{}
		for _, d := range domain.DifficultyRange(300) {
			cells[c][d] = domain.Cell{Text: "q", AnswerText: "a"}
		}
	}
	if err := Grid(cats, 300, cells); err != nil {
		t.Fatalf("complete grid failed: %v", err)
	}
}
