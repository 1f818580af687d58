package collection

// AuthKind tags the variant of a request's authentication.
type AuthKind string

// Authentication kinds.
const (
	AuthNone   AuthKind = "none"
	AuthBasic  AuthKind = "basic"
	AuthBearer AuthKind = "bearer"
	// AuthUnsupported records a foreign scheme the model has no variant
	// for. It is a visible degradation, not an error: import never fails
	// solely because an auth scheme is unrecognized.
	AuthUnsupported AuthKind = "unsupported"
)

// Authentication is a tagged auth variant. Username, Password, and Token
// are template strings.
type Authentication struct {
	Kind     AuthKind
	Username string
	Password string
	Token    string
	// Original is the foreign scheme name for AuthUnsupported, preserved
	// so the user can see what was dropped.
	Original string
}

// NoAuth returns the empty auth variant.
func NoAuth() Authentication {
	return Authentication{Kind: AuthNone}
}

// BasicAuth returns a basic-auth variant.
func BasicAuth(username, password string) Authentication {
	return Authentication{Kind: AuthBasic, Username: username, Password: password}
}

// BearerAuth returns a bearer-token variant.
func BearerAuth(token string) Authentication {
	return Authentication{Kind: AuthBearer, Token: token}
}

// UnsupportedAuth records a scheme with no canonical counterpart.
func UnsupportedAuth(original string) Authentication {
	return Authentication{Kind: AuthUnsupported, Original: original}
}
