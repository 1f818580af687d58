package resolve

import (
	"testing"
	"time"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		ttl     string
		mode    PolicyMode
		ttlWant time.Duration
		wantErr bool
	}{
		{name: "always", policy: "always", mode: PolicyAlways},
		{name: "no-history", policy: "no-history", mode: PolicyNoHistory},
		{name: "underscore normalized", policy: "no_history", mode: PolicyNoHistory},
		{name: "never", policy: "never", mode: PolicyNever},
		{name: "when-expired", policy: "when-expired", ttl: "60", mode: PolicyWhenExpired, ttlWant: time.Minute},
		{name: "when-expired missing ttl", policy: "when-expired", wantErr: true},
		{name: "when-expired negative ttl", policy: "when-expired", ttl: "-1", wantErr: true},
		{name: "unknown", policy: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := ParsePolicy(tt.policy, tt.ttl)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePolicy(%q, %q) succeeded, expected error", tt.policy, tt.ttl)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePolicy(%q, %q): %v", tt.policy, tt.ttl, err)
			}
			if policy.Mode != tt.mode {
				t.Errorf("mode = %q, expected %q", policy.Mode, tt.mode)
			}
			if policy.TTL != tt.ttlWant {
				t.Errorf("ttl = %v, expected %v", policy.TTL, tt.ttlWant)
			}
		})
	}
}

func TestPolicyAllowsReuse(t *testing.T) {
	captured := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ttl60 := Policy{Mode: PolicyWhenExpired, TTL: 60 * time.Second}

	tests := []struct {
		name   string
		policy Policy
		now    time.Time
		want   bool
	}{
		{"always reuses", Policy{Mode: PolicyAlways}, captured.Add(time.Hour), true},
		{"no-history never reuses", Policy{Mode: PolicyNoHistory}, captured, false},
		{"never never reuses", Policy{Mode: PolicyNever}, captured, false},
		{"when-expired within ttl", ttl60, captured.Add(59 * time.Second), true},
		{"when-expired at ttl", ttl60, captured.Add(60 * time.Second), false},
		{"when-expired past ttl", ttl60, captured.Add(61 * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.AllowsReuse(tt.now, captured); got != tt.want {
				t.Errorf("AllowsReuse = %v, expected %v", got, tt.want)
			}
		})
	}
}
