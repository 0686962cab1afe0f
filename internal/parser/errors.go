package parser

import "fmt"

// FetchError wraps any transport failure, timeouts included. Retrying is
// caller policy; the framework itself never retries.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a mandatory field whose selector yielded nothing: a
// markup mismatch that retrying cannot fix. "No results" is never a
// ParseError; empty is a normal outcome for optional fields and searches.
type ParseError struct {
	Source string
	URL    string
	Step   string
	Field  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s: selector for %q matched nothing (%s)",
		e.Source, e.Step, e.Field, e.URL)
}

// PartialError marks a chapter-list walk that failed midway. The refs
// collected before the failure are still returned; the caller decides
// whether partial results are acceptable.
type PartialError struct {
	Collected int
	Pages     int
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("chapter list incomplete: %d chapters over %d pages before failure: %v",
		e.Collected, e.Pages, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }
