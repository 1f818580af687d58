package resolve

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/getquiver/quiver/pkg/collection"
	"github.com/getquiver/quiver/pkg/logging"
	"github.com/getquiver/quiver/pkg/template"
)

// Maximum number of nested template renders in one render tree. Nesting
// only happens through profile data values that are themselves templates.
const maxNestedRenders = 10

// Fetcher supplies response payloads for chains. The transport layer owns
// the implementation; the resolver only ever calls it on a cache miss.
type Fetcher interface {
	Fetch(ctx context.Context, chainID collection.ChainID) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, chainID collection.ChainID) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, chainID collection.ChainID) ([]byte, error) {
	return f(ctx, chainID)
}

// Clock supplies the current time for TTL comparison.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Func evaluates one {% %} function call. The dispatch table is open:
// hosts can register additional functions without touching the parser.
type Func func(ctx context.Context, call *template.FunctionCall, ec *Context) (string, error)

// Context is the per-render evaluation scope: the active profile's data,
// the collection's chain table, and optional user-supplied overrides
// consulted before profile data.
type Context struct {
	Profile   map[string]string
	Chains    *collection.OrderedMap[*collection.Chain]
	Overrides map[string]string

	depth int
}

// Chain looks up a chain in the evaluation scope.
func (ec *Context) Chain(id string) (*collection.Chain, bool) {
	if ec.Chains == nil {
		return nil, false
	}
	return ec.Chains.Get(id)
}

// Resolver evaluates parsed templates. It owns the chain payload cache;
// one resolver should live as long as the host wants cached responses to.
type Resolver struct {
	fetcher Fetcher
	clock   Clock
	logger  *slog.Logger
	funcs   map[string]Func
	cache   *chainCache
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces the wall clock, for TTL tests.
func WithClock(c Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

// WithLogger sets the resolver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithFunction registers (or replaces) a template function.
func WithFunction(name string, fn Func) Option {
	return func(r *Resolver) { r.funcs[name] = fn }
}

// New creates a resolver. fetcher may be nil when the host wants renders
// that never trigger transport; response chains then fail with FetchError.
func New(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		clock:   systemClock{},
		logger:  logging.Nop(),
		cache:   newChainCache(),
		funcs:   make(map[string]Func),
	}
	r.funcs["response"] = r.evalResponse
	r.funcs["chain"] = r.evalChain
	r.funcs["env"] = evalEnv
	r.funcs["uuid"] = evalUUID
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render parses and evaluates one template string against the evaluation
// context, concatenating literal text and resolved expressions left to
// right. A failure in any expression fails the whole string; the resolver
// never substitutes an empty string for a failed expression.
func (r *Resolver) Render(ctx context.Context, source string, ec *Context) (string, error) {
	tmpl, err := template.Parse(source)
	if err != nil {
		return "", err
	}
	return r.RenderTemplate(ctx, tmpl, ec)
}

// RenderTemplate evaluates an already-parsed template.
func (r *Resolver) RenderTemplate(ctx context.Context, tmpl *template.Template, ec *Context) (string, error) {
	var out []byte
	for _, seg := range tmpl.Segments() {
		if seg.Expr == nil {
			out = append(out, seg.Text...)
			continue
		}
		value, err := r.eval(ctx, seg.Expr, ec)
		if err != nil {
			return "", err
		}
		out = append(out, value...)
	}
	return string(out), nil
}

func (r *Resolver) eval(ctx context.Context, expr template.Expression, ec *Context) (string, error) {
	switch e := expr.(type) {
	case *template.VariableRef:
		return r.lookupVariable(ctx, e, ec)
	case *template.FunctionCall:
		fn, ok := r.funcs[e.Name]
		if !ok {
			return "", &UnknownFunctionError{Name: e.Name}
		}
		return fn(ctx, e, ec)
	default:
		return "", &UnknownFunctionError{Name: expr.String()}
	}
}

// lookupVariable resolves a dotted path: overrides first, then profile
// data, then the reserved built-ins. Profile values may themselves be
// templates and are rendered recursively under a depth guard.
func (r *Resolver) lookupVariable(ctx context.Context, ref *template.VariableRef, ec *Context) (string, error) {
	key := variableKey(ref)

	if value, ok := ec.Overrides[key]; ok {
		return value, nil
	}
	if value, ok := ec.Profile[key]; ok {
		return r.renderNested(ctx, value, ec)
	}

	switch key {
	case "uuid":
		return uuid.NewString(), nil
	case "timestamp":
		return strconv.FormatInt(r.clock.Now().Unix(), 10), nil
	}
	return "", &UnresolvedVariableError{Path: key}
}

// renderNested renders a profile value that may itself contain template
// expressions. A value that fails to parse is used verbatim; profile data
// authored outside this tool is not required to be template-clean.
func (r *Resolver) renderNested(ctx context.Context, value string, ec *Context) (string, error) {
	tmpl, err := template.Parse(value)
	if err != nil || tmpl.IsLiteral() {
		return value, nil
	}
	if ec.depth+1 > maxNestedRenders {
		return "", &RecursionLimitError{Limit: maxNestedRenders}
	}
	nested := *ec
	nested.depth = ec.depth + 1
	return r.RenderTemplate(ctx, tmpl, &nested)
}

func variableKey(ref *template.VariableRef) string {
	if len(ref.Path) == 1 {
		return ref.Path[0]
	}
	key := ref.Path[0]
	for _, part := range ref.Path[1:] {
		key += "." + part
	}
	return key
}

// fetchChain produces a chain's raw payload from its source. File and
// command sources are local; response sources go through the transport
// capability. All failures surface as FetchError.
func (r *Resolver) fetchChain(ctx context.Context, chain *collection.Chain) ([]byte, error) {
	r.logger.Debug("resolving chain", "chain", chain.ID, "source", chain.Source.Kind)

	switch chain.Source.Kind {
	case collection.ChainSourceFile:
		payload, err := readChainFile(chain.Source.Path)
		if err != nil {
			return nil, &FetchError{ChainID: string(chain.ID), Err: err}
		}
		return payload, nil
	case collection.ChainSourceCommand:
		payload, err := runChainCommand(ctx, chain.Source.Command)
		if err != nil {
			return nil, &FetchError{ChainID: string(chain.ID), Err: err}
		}
		return payload, nil
	case collection.ChainSourceResponse:
		if r.fetcher == nil {
			return nil, &FetchError{ChainID: string(chain.ID), Err: errNoFetcher}
		}
		payload, err := r.fetcher.Fetch(ctx, chain.ID)
		if err != nil {
			return nil, &FetchError{ChainID: string(chain.ID), Err: err}
		}
		return payload, nil
	default:
		return nil, &FetchError{ChainID: string(chain.ID), Err: errUnknownSource}
	}
}
