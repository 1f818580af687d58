package resolve

import "fmt"

// UnresolvedVariableError reports a {{ }} path that matched neither an
// override, nor profile data, nor a reserved built-in.
type UnresolvedVariableError struct {
	Path string
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable %q", e.Path)
}

// UnknownChainError reports a chain ID absent from the collection's chain
// table.
type UnknownChainError struct {
	ChainID string
}

func (e *UnknownChainError) Error() string {
	return fmt.Sprintf("unknown chain %q", e.ChainID)
}

// UnknownFunctionError reports a {% %} call whose name is not in the
// dispatch table. The parser accepts any name; rejection happens here.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown template function %q", e.Name)
}

// CallError reports a structurally valid call evaluated with a bad
// argument list, such as a missing TTL for when-expired.
type CallError struct {
	Func   string
	Reason string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Func, e.Reason)
}

// ExtractionError reports an extraction path that could not be applied to
// a fetched payload.
type ExtractionError struct {
	Path   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %q: %s", e.Path, e.Reason)
}

// TransformError reports a selector transform that failed to decode, for
// example a b64 wrapper with malformed encoding or a byte-length mismatch.
type TransformError struct {
	Input  string
	Reason string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transforming %q: %s", e.Input, e.Reason)
}

// FetchError wraps a failure to produce a chain's payload, whether from
// the transport capability, a file read, or a command run.
type FetchError struct {
	ChainID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching chain %q: %v", e.ChainID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RecursionLimitError reports a render tree that exceeded the nested
// template limit, which only happens with self-referential profile data.
type RecursionLimitError struct {
	Limit int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("template recursion limit reached (%d nested renders)", e.Limit)
}
