package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// thresholdHolder lets us reuse go-playground/validator's struct-tag
// machinery for a single scalar check instead of hand-rolling range
// comparisons, matching how storbeck-augustus validates its configuration
// structs before they're used.
type thresholdHolder struct {
	Threshold float32 `validate:"gte=0,lte=1"`
}

// ValidateThreshold enforces spec.md §3's `threshold: f32∈[0,1]` invariant
// for Similar match tables.
func ValidateThreshold(tableID uint32, threshold float32) error {
	if err := validate.Struct(thresholdHolder{Threshold: threshold}); err != nil {
		return New(InvalidThreshold, contextf("table_id=%d threshold=%v", tableID, threshold), err)
	}
	return nil
}

type wordListHolder struct {
	Words []string `validate:"required,min=1,dive,required"`
}

// ValidateWordList enforces that a table's word list (or exemption word
// list) is non-empty and contains no empty sub-words, per spec.md §7's
// InvalidPattern ("empty sub-word").
func ValidateWordList(tableID uint32, words []string) error {
	if err := validate.Struct(wordListHolder{Words: words}); err != nil {
		return New(InvalidPattern, contextf("table_id=%d", tableID), err)
	}
	return nil
}

func contextf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
