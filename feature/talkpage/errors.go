package talkpage

import "fmt"

// AmbiguousHashError reports two topics or two replies on the same page
// sharing a content hash. Pairing the common set would be ambiguous, so the
// merge refuses the subtree instead of silently mis-pairing it.
type AmbiguousHashError struct {
	Level string
	Sha   string
}

func (e *AmbiguousHashError) Error() string {
	return fmt.Sprintf("ambiguous %s hash %s: two nodes share a content hash", e.Level, e.Sha)
}
