package collection

// ProfileID identifies a profile within a collection.
type ProfileID string

// ChainID identifies a chain within a collection.
type ChainID string

// Collection is the unified in-memory representation produced by every
// importer: profiles keyed by ID, chains keyed by ID, and a recursive
// folder/request tree rooted at an implicit folder.
type Collection struct {
	Name     string
	Profiles *OrderedMap[*Profile]
	Chains   *OrderedMap[*Chain]
	Root     *Folder
}

// New creates an empty collection with the given name.
func New(name string) *Collection {
	return &Collection{
		Name:     name,
		Profiles: NewOrderedMap[*Profile](),
		Chains:   NewOrderedMap[*Chain](),
		Root:     NewFolder(name),
	}
}

// AddProfile appends a profile. Profile IDs are unique within a collection.
func (c *Collection) AddProfile(p *Profile) error {
	if !c.Profiles.Set(string(p.ID), p) {
		return &DuplicateIdentifierError{Kind: "profile", ID: string(p.ID)}
	}
	return nil
}

// AddChain appends a chain. Chain IDs are unique within a collection.
func (c *Collection) AddChain(ch *Chain) error {
	if !c.Chains.Set(string(ch.ID), ch) {
		return &DuplicateIdentifierError{Kind: "chain", ID: string(ch.ID)}
	}
	return nil
}

// Chain looks up a chain by ID.
func (c *Collection) Chain(id ChainID) (*Chain, bool) {
	return c.Chains.Get(string(id))
}

// Profile looks up a profile by ID.
func (c *Collection) Profile(id ProfileID) (*Profile, bool) {
	return c.Profiles.Get(string(id))
}

// Profile is a named environment. Data supplies the variables substituted
// into {{ }} expressions (e.g. host). Which profile is active at render time
// is the caller's concern, not the model's.
type Profile struct {
	ID   ProfileID
	Name string
	// Data values are template strings themselves; they are resolved, not
	// copied verbatim, when referenced.
	Data map[string]string
}

// ChainSourceKind tags the variant of a chain's value source.
type ChainSourceKind string

// Chain source kinds.
const (
	// ChainSourceFile reads a file from disk at resolution time.
	ChainSourceFile ChainSourceKind = "file"
	// ChainSourceCommand runs an external command and captures its stdout.
	ChainSourceCommand ChainSourceKind = "command"
	// ChainSourceResponse is backed by another request's response, fetched
	// through the host-supplied transport capability at resolution time.
	ChainSourceResponse ChainSourceKind = "response"
)

// ChainSource describes where a chain's value comes from. The source holds
// only the path, argv, or request reference; content is produced lazily
// when the chain is resolved.
type ChainSource struct {
	Kind ChainSourceKind
	// Path is the file path for ChainSourceFile.
	Path string
	// Command is the argv for ChainSourceCommand.
	Command []string
	// Request is the upstream request identifier for ChainSourceResponse.
	Request string
}

// FileSource builds a file-backed chain source.
func FileSource(path string) ChainSource {
	return ChainSource{Kind: ChainSourceFile, Path: path}
}

// CommandSource builds a command-backed chain source.
func CommandSource(args ...string) ChainSource {
	return ChainSource{Kind: ChainSourceCommand, Command: args}
}

// ResponseSource builds a response-backed chain source referencing the
// given upstream request.
func ResponseSource(requestID string) ChainSource {
	return ChainSource{Kind: ChainSourceResponse, Request: requestID}
}

// Chain is a named, reusable non-literal value source referenced from
// {% chain '<id>' %} expressions, e.g. a binary attachment shared verbatim
// across multiple requests.
type Chain struct {
	ID     ChainID
	Source ChainSource
}
