package counciltax

import "fmt"

// FetchError is a network or status failure on an outbound request.
// Status is 0 when no response was received.
type FetchError struct {
	Method string
	Url    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Url, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Url, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ExtractionError means the expected html structure (a list, a select or a
// definition list) is absent from the page.
type ExtractionError struct {
	Url      string
	Selector string
}

func (e *ExtractionError) Error() string {
	if e.Url == "" {
		return fmt.Sprintf("could not find %q", e.Selector)
	}
	return fmt.Sprintf("could not find %q on %s", e.Selector, e.Url)
}

// FieldNotFound means a sub-field is missing inside an otherwise valid page.
type FieldNotFound struct {
	Field string
}

func (e *FieldNotFound) Error() string {
	return fmt.Sprintf("field %q not found", e.Field)
}
