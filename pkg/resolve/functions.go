package resolve

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/google/uuid"

	"github.com/getquiver/quiver/pkg/template"
)

var (
	errNoFetcher     = errors.New("no fetcher configured")
	errUnknownSource = errors.New("unknown chain source kind")
)

// evalResponse evaluates the five-argument response-extraction call:
//
//	{% response 'body', '<chain>', '<selector>', '<policy>', <ttl> %}
//
// The attribute selects the payload facet ('body' applies the selector as
// a JSONPath, 'raw' returns the payload verbatim), the selector may carry
// a b64 transform wrapper, and policy/TTL govern payload reuse at this
// call site.
func (r *Resolver) evalResponse(ctx context.Context, call *template.FunctionCall, ec *Context) (string, error) {
	if len(call.Args) < 4 || len(call.Args) > 5 {
		return "", &CallError{Func: "response", Reason: "expected 4 or 5 arguments"}
	}

	attribute := call.Args[0].Value
	chainID := call.Args[1].Value
	selector := call.Args[2].Value

	ttl := ""
	if len(call.Args) == 5 {
		ttl = call.Args[4].Value
	}
	policy, err := ParsePolicy(call.Args[3].Value, ttl)
	if err != nil {
		return "", err
	}

	chain, ok := ec.Chain(chainID)
	if !ok {
		return "", &UnknownChainError{ChainID: chainID}
	}

	payload, err := r.cache.resolve(ctx, chainID, policy, r.clock.Now, func(fctx context.Context) ([]byte, error) {
		return r.fetchChain(fctx, chain)
	})
	if err != nil {
		return "", err
	}

	switch attribute {
	case "raw":
		return string(payload), nil
	case "body":
		path, err := decodeSelector(selector)
		if err != nil {
			return "", err
		}
		if path == "" {
			return string(payload), nil
		}
		return extract(payload, path)
	default:
		return "", &CallError{Func: "response", Reason: "unsupported attribute " + attribute}
	}
}

// evalChain resolves a chain entity to its raw content:
//
//	{% chain '<chain>' %}
//
// Chain entities exist to be shared verbatim across requests (e.g. a
// binary attachment), so they resolve under the always policy: one fetch,
// reused for the resolver's lifetime.
func (r *Resolver) evalChain(ctx context.Context, call *template.FunctionCall, ec *Context) (string, error) {
	if len(call.Args) != 1 {
		return "", &CallError{Func: "chain", Reason: "expected exactly 1 argument"}
	}
	chainID := call.Args[0].Value

	chain, ok := ec.Chain(chainID)
	if !ok {
		return "", &UnknownChainError{ChainID: chainID}
	}

	payload, err := r.cache.resolve(ctx, chainID, Policy{Mode: PolicyAlways}, r.clock.Now, func(fctx context.Context) ([]byte, error) {
		return r.fetchChain(fctx, chain)
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// evalEnv reads a process environment variable:
//
//	{% env 'HOME' %}
func evalEnv(_ context.Context, call *template.FunctionCall, _ *Context) (string, error) {
	if len(call.Args) != 1 {
		return "", &CallError{Func: "env", Reason: "expected exactly 1 argument"}
	}
	name := call.Args[0].Value
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", &UnresolvedVariableError{Path: "env." + name}
	}
	return value, nil
}

// evalUUID generates a random UUID:
//
//	{% uuid %}
func evalUUID(_ context.Context, call *template.FunctionCall, _ *Context) (string, error) {
	if len(call.Args) != 0 {
		return "", &CallError{Func: "uuid", Reason: "expected no arguments"}
	}
	return uuid.NewString(), nil
}

// readChainFile reads a file-backed chain. The chain holds only the path;
// content is read here, at resolution time.
func readChainFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// runChainCommand runs a command-backed chain and captures stdout.
func runChainCommand(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
}
