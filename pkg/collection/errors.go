package collection

import "fmt"

// DuplicateIdentifierError is returned when two siblings (folder children,
// profiles, or chains) share an identifier. Structural violations are fatal
// to the import run that produced them.
type DuplicateIdentifierError struct {
	// Kind names the entity class: "profile", "chain", "node".
	Kind string
	// ID is the colliding identifier.
	ID string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("duplicate %s identifier %q", e.Kind, e.ID)
}

// InvalidFieldError is returned when a request field fails structural
// validation, such as an empty query/header key or an unknown HTTP method.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}
