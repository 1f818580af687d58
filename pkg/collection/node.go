package collection

// Node is a folder-tree entry: either a *Folder or a *Request. The tree is
// acyclic by construction because folders are only ever built top-down
// during import and children are never reattached.
type Node interface {
	NodeName() string
	isNode()
}

// Folder groups requests and sub-folders. Child order is insertion order
// and is preserved for stable display and execution.
type Folder struct {
	Name     string
	Children *OrderedMap[Node]
}

// NewFolder creates an empty folder.
func NewFolder(name string) *Folder {
	return &Folder{Name: name, Children: NewOrderedMap[Node]()}
}

// Add appends a child node under the given identifier. Identifiers are
// unique within a folder's children.
func (f *Folder) Add(id string, node Node) error {
	if !f.Children.Set(id, node) {
		return &DuplicateIdentifierError{Kind: "node", ID: id}
	}
	return nil
}

// Folder looks up a direct child folder by identifier.
func (f *Folder) Folder(id string) (*Folder, bool) {
	node, ok := f.Children.Get(id)
	if !ok {
		return nil, false
	}
	child, ok := node.(*Folder)
	return child, ok
}

// Request looks up a direct child request by identifier.
func (f *Folder) Request(id string) (*Request, bool) {
	node, ok := f.Children.Get(id)
	if !ok {
		return nil, false
	}
	child, ok := node.(*Request)
	return child, ok
}

// Requests returns the folder's direct child requests in insertion order.
func (f *Folder) Requests() []*Request {
	var out []*Request
	f.Children.Each(func(_ string, node Node) bool {
		if r, ok := node.(*Request); ok {
			out = append(out, r)
		}
		return true
	})
	return out
}

// Walk visits every node in the subtree depth-first in child order,
// including f itself.
func (f *Folder) Walk(visit func(id string, node Node) bool) {
	f.Children.Each(func(id string, node Node) bool {
		if !visit(id, node) {
			return false
		}
		if child, ok := node.(*Folder); ok {
			child.Walk(visit)
		}
		return true
	})
}

// NodeName returns the folder's display name.
func (f *Folder) NodeName() string { return f.Name }

func (f *Folder) isNode() {}

// Request is one HTTP request template. Every string field capable of
// holding {{ }} or {% %} is a template string, stored unevaluated.
type Request struct {
	Name   string
	Method string
	URL    string
	Body   Body
	Auth   Authentication
	// Query and Headers map parameter names to template-string values.
	Query   *OrderedMap[string]
	Headers *OrderedMap[string]
}

// Methods accepted by the model.
var validMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "PATCH": {},
	"DELETE": {}, "HEAD": {}, "OPTIONS": {},
}

// NewRequest creates a request after validating the method. Unknown methods
// are an InvalidFieldError because no importer should ever synthesize one.
func NewRequest(name, method, url string) (*Request, error) {
	if _, ok := validMethods[method]; !ok {
		return nil, &InvalidFieldError{Field: "method", Reason: "unknown method " + method}
	}
	return &Request{
		Name:    name,
		Method:  method,
		URL:     url,
		Body:    NoBody(),
		Auth:    NoAuth(),
		Query:   NewOrderedMap[string](),
		Headers: NewOrderedMap[string](),
	}, nil
}

// SetQuery adds a query parameter. Keys must be non-empty; duplicates keep
// the first value.
func (r *Request) SetQuery(key, value string) error {
	if key == "" {
		return &InvalidFieldError{Field: "query", Reason: "empty parameter name"}
	}
	r.Query.Set(key, value)
	return nil
}

// SetHeader adds a header. Keys must be non-empty; duplicates keep the
// first value.
func (r *Request) SetHeader(key, value string) error {
	if key == "" {
		return &InvalidFieldError{Field: "headers", Reason: "empty header name"}
	}
	r.Headers.Set(key, value)
	return nil
}

// NodeName returns the request's display name.
func (r *Request) NodeName() string { return r.Name }

func (r *Request) isNode() {}
