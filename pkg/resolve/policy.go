package resolve

import (
	"strconv"
	"strings"
	"time"
)

// PolicyMode names a cache policy.
type PolicyMode string

// Cache policies. Policy and TTL travel together as call arguments, not as
// chain-level state, so the same chain may be resolved under different
// policies at different call sites.
const (
	// PolicyAlways reuses any prior result unconditionally.
	PolicyAlways PolicyMode = "always"
	// PolicyNoHistory never reuses; every call fetches.
	PolicyNoHistory PolicyMode = "no-history"
	// PolicyNever is an alias of PolicyNoHistory reserved for explicit
	// no-cache intent. No fixture distinguishes the two.
	PolicyNever PolicyMode = "never"
	// PolicyWhenExpired reuses until TTL seconds have elapsed since the
	// value was captured.
	PolicyWhenExpired PolicyMode = "when-expired"
)

// Policy is a call-site caching policy.
type Policy struct {
	Mode PolicyMode
	// TTL applies only to PolicyWhenExpired.
	TTL time.Duration
}

// ParsePolicy parses a policy name and optional TTL argument (in seconds).
// The TTL is required for when-expired and ignored otherwise.
func ParsePolicy(name, ttl string) (Policy, error) {
	mode := PolicyMode(strings.ReplaceAll(strings.ToLower(name), "_", "-"))
	switch mode {
	case PolicyAlways, PolicyNoHistory, PolicyNever:
		return Policy{Mode: mode}, nil
	case PolicyWhenExpired:
		if ttl == "" {
			return Policy{}, &CallError{Func: "response", Reason: "when-expired requires a TTL argument"}
		}
		seconds, err := strconv.Atoi(ttl)
		if err != nil || seconds < 0 {
			return Policy{}, &CallError{Func: "response", Reason: "invalid TTL " + strconv.Quote(ttl)}
		}
		return Policy{Mode: PolicyWhenExpired, TTL: time.Duration(seconds) * time.Second}, nil
	default:
		return Policy{}, &CallError{Func: "response", Reason: "unknown cache policy " + strconv.Quote(name)}
	}
}

// AllowsReuse reports whether a value captured at capturedAt may be reused
// at time now. Expiry is checked lazily at the moment of reuse; there is no
// background eviction.
func (p Policy) AllowsReuse(now, capturedAt time.Time) bool {
	switch p.Mode {
	case PolicyAlways:
		return true
	case PolicyWhenExpired:
		return now.Sub(capturedAt) < p.TTL
	default:
		return false
	}
}
