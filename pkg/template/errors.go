package template

import "fmt"

// MalformedTemplateError reports unparseable expression syntax: an
// unterminated delimiter pair, an empty expression body, or a garbled
// argument list. Offset is the byte position of the offending expression's
// opening delimiter (or of the exact problem point inside it).
type MalformedTemplateError struct {
	Offset int
	Reason string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("malformed template at byte %d: %s", e.Offset, e.Reason)
}
