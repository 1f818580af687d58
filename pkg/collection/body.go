package collection

// BodyKind tags the variant of a request body.
type BodyKind string

// Body kinds.
const (
	BodyNone           BodyKind = "none"
	BodyRaw            BodyKind = "raw"
	BodyJSON           BodyKind = "json"
	BodyFormURLEncoded BodyKind = "form_urlencoded"
	BodyFormMultipart  BodyKind = "form_multipart"
)

// Body is a tagged request-body variant. Exactly the fields relevant to
// Kind are populated; the rest are zero.
type Body struct {
	Kind BodyKind
	// Text is the template string for BodyRaw.
	Text string
	// JSON is the structured value for BodyJSON. Leaf strings are template
	// strings resolved individually at request-build time.
	JSON any
	// Form holds the ordered field/value pairs for BodyFormURLEncoded and
	// BodyFormMultipart. Multipart values may be chain-reference templates
	// like {% chain 'file_a1b2' %}.
	Form *OrderedMap[string]
}

// NoBody returns the empty body variant.
func NoBody() Body {
	return Body{Kind: BodyNone}
}

// RawBody returns a raw-text body.
func RawBody(text string) Body {
	return Body{Kind: BodyRaw, Text: text}
}

// JSONBody returns a structured JSON body.
func JSONBody(value any) Body {
	return Body{Kind: BodyJSON, JSON: value}
}

// FormBody returns a url-encoded form body with the given ordered fields.
func FormBody(form *OrderedMap[string]) Body {
	return Body{Kind: BodyFormURLEncoded, Form: form}
}

// MultipartBody returns a multipart form body with the given ordered fields.
func MultipartBody(form *OrderedMap[string]) Body {
	return Body{Kind: BodyFormMultipart, Form: form}
}
