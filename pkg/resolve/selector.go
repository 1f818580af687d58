package resolve

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// selectorPrefix marks a transform-wrapped extraction path:
// b64::<base64 of the path>::<N>b, where N is the expected byte length of
// the decoded path. This is the shape response-extraction tags arrive in
// from foreign exports.
const selectorPrefix = "b64::"

// decodeSelector unwraps a selector argument into a plain extraction path.
// Plain selectors pass through untouched; b64 wrappers are decoded and
// checked against their length hint.
func decodeSelector(selector string) (string, error) {
	if !strings.HasPrefix(selector, selectorPrefix) {
		return selector, nil
	}

	rest := strings.TrimPrefix(selector, selectorPrefix)
	sep := strings.LastIndex(rest, "::")
	if sep < 0 {
		return "", &TransformError{Input: selector, Reason: "missing length hint"}
	}
	encoded, hint := rest[:sep], rest[sep+2:]

	if !strings.HasSuffix(hint, "b") {
		return "", &TransformError{Input: selector, Reason: "length hint must end in 'b'"}
	}
	expected, err := strconv.Atoi(strings.TrimSuffix(hint, "b"))
	if err != nil {
		return "", &TransformError{Input: selector, Reason: "invalid length hint " + strconv.Quote(hint)}
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", &TransformError{Input: selector, Reason: "malformed base64 payload"}
	}
	if len(decoded) != expected {
		return "", &TransformError{
			Input:  selector,
			Reason: fmt.Sprintf("decoded to %d bytes, expected %d", len(decoded), expected),
		}
	}
	return string(decoded), nil
}

// extract applies a JSONPath-like selector to a raw payload and returns
// the selected sub-value as a string.
func extract(payload []byte, path string) (string, error) {
	data, err := oj.Parse(payload)
	if err != nil {
		return "", &ExtractionError{Path: path, Reason: "payload is not valid JSON"}
	}

	expr, err := jp.ParseString(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Reason: "invalid extraction path"}
	}

	results := expr.Get(data)
	if len(results) == 0 {
		return "", &ExtractionError{Path: path, Reason: "no value at path"}
	}
	return stringify(results[0]), nil
}

// stringify renders an extracted value. Strings pass through unquoted;
// everything else is compact JSON.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return oj.JSON(v)
}
