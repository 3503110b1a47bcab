package quantile

import "fmt"

// InsufficientDataError reports a corpus too small or too degenerate to fit
// quantile models.
type InsufficientDataError struct {
	Records int
	Reason  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data (%d records): %s", e.Records, e.Reason)
}

// UnknownCategoryError reports a context value outside the vocabulary the
// encoder saw during fit. Predictions never fall back to a default category.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s category %q", e.Field, e.Value)
}
