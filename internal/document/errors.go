package document

import "fmt"

// FieldError reports an edit addressed to a field that does not exist or cannot be written.
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Path, e.Message)
}
