// Package validate holds the pure validation rules shared by every
// write path. The forbidden-content check is intentionally blunt: any
// occurrence of "<", ">" or the substring "http"/"https" is rejected,
// even outside a URL context.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"grid-quiz-service/internal/domain"
)

const (
	maxTextLen     = 100
	maxCategoryLen = 8
	minCategories  = 2
	maxCategories  = 5
)

// Sanitize strips control characters (keeping newline and tab) and
// trims surrounding whitespace.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Forbidden reports whether s contains angle brackets or the
// case-insensitive substrings "http"/"https".
func Forbidden(s string) bool {
	if strings.ContainsAny(s, "<>") {
		return true
	}
	return strings.Contains(strings.ToLower(s), "http")
}

// Text validates a sanitized free-text field (title, question, answer).
func Text(s string) error {
	if s == "" {
		return domain.Validation("this field is required")
	}
	if utf8.RuneCountInString(s) > maxTextLen {
		return domain.Validation(fmt.Sprintf("must be %d characters or fewer", maxTextLen))
	}
	if Forbidden(s) {
		return domain.Validation("contains forbidden content (<, >, http, https)")
	}
	return nil
}

// Categories validates the sanitized category name list.
func Categories(names []string) error {
	if len(names) < minCategories || len(names) > maxCategories {
		return domain.Validation(fmt.Sprintf("between %d and %d categories are required", minCategories, maxCategories))
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return domain.Validation("category names are required")
		}
		if utf8.RuneCountInString(name) > maxCategoryLen {
			return domain.Validation(fmt.Sprintf("category names must be %d characters or fewer", maxCategoryLen))
		}
		if Forbidden(name) {
			return domain.Validation("category names contain forbidden content (<, >, http, https)")
		}
		if _, dup := seen[name]; dup {
			return domain.Validation("category names must be unique")
		}
		seen[name] = struct{}{}
	}
	return nil
}

// MaxDifficulty validates the board height selector.
func MaxDifficulty(n int) error {
	for _, allowed := range domain.MaxDifficulties {
		if n == allowed {
			return nil
		}
	}
	return domain.Validation("maxDifficulty must be one of 200, 300, 400 or 500")
}

// Grid checks that every (category, difficulty) cell exists and that
// its text and answer pass Text. Cells are visited in author-given
// category order with difficulties ascending, and the first failure is
// reported.
func Grid(categories []string, maxDifficulty int, cells map[string]map[int]domain.Cell) error {
	for _, cat := range categories {
		byDiff, ok := cells[cat]
		if !ok {
			return domain.Validation(fmt.Sprintf("category %q has no questions", cat))
		}
		for _, d := range domain.DifficultyRange(maxDifficulty) {
			cell, ok := byDiff[d]
			if !ok {
				return domain.Validation(fmt.Sprintf("category %q is missing the %d-point question", cat, d))
			}
			if err := Text(Sanitize(cell.Text)); err != nil {
				return domain.Validation(fmt.Sprintf("category %q %d points: question - %s", cat, d, err.Error()))
			}
			if err := Text(Sanitize(cell.AnswerText)); err != nil {
				return domain.Validation(fmt.Sprintf("category %q %d points: answer - %s", cat, d, err.Error()))
			}
		}
	}
	return nil
}
