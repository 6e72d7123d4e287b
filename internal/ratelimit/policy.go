package ratelimit

import (
	"time"

	"lanagate/internal/models"
)

// Logical endpoint keys for the protected operations. Quotas are keyed by
// these rather than raw URL paths so route layout changes do not silently
// reset quotas.
const (
	EndpointChat     = "/api/v1/chat"
	EndpointLessons  = "/api/v1/lessons"
	EndpointTTS      = "/api/v1/tts"
	EndpointRegister = "/api/v1/register"
)

// Policy is the quota for one endpoint: at most MaxRequests admitted requests
// per identifier within any trailing Window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// PolicyTable maps endpoints to quotas. Endpoints not present in the table
// receive the generous default policy rather than being rejected; unknown
// endpoints are default-allow on purpose.
type PolicyTable struct {
	policies map[string]Policy
	fallback Policy
}

// Built-in tiers. Production quotas are sized for real traffic against a
// metered AI backend; development quotas stay out of the way.
var (
	productionPolicies = map[string]Policy{
		EndpointChat:     {MaxRequests: 10, Window: time.Minute},
		EndpointLessons:  {MaxRequests: 5, Window: time.Minute},
		EndpointTTS:      {MaxRequests: 20, Window: time.Minute},
		EndpointRegister: {MaxRequests: 5, Window: time.Hour},
	}

	developmentPolicies = map[string]Policy{
		EndpointChat:     {MaxRequests: 60, Window: time.Minute},
		EndpointLessons:  {MaxRequests: 30, Window: time.Minute},
		EndpointTTS:      {MaxRequests: 100, Window: time.Minute},
		EndpointRegister: {MaxRequests: 50, Window: time.Hour},
	}

	defaultPolicy = Policy{MaxRequests: 100, Window: time.Minute}
)

// NewPolicyTable builds the quota table for the given mode, applying operator
// overrides on top of the built-in tier. Unknown modes get the production
// tier; stricter is the safer default.
func NewPolicyTable(mode string, overrides map[string]models.EndpointPolicy) PolicyTable {
	tier := productionPolicies
	if mode == models.ModeDevelopment {
		tier = developmentPolicies
	}

	policies := make(map[string]Policy, len(tier)+len(overrides))
	for endpoint, p := range tier {
		policies[endpoint] = p
	}
	for endpoint, p := range overrides {
		policies[endpoint] = Policy{MaxRequests: p.MaxRequests, Window: p.Window}
	}

	return PolicyTable{policies: policies, fallback: defaultPolicy}
}

// Lookup returns the policy for an endpoint, falling back to the default
// policy for endpoints the table does not know.
func (t PolicyTable) Lookup(endpoint string) Policy {
	if p, ok := t.policies[endpoint]; ok {
		return p
	}
	return t.fallback
}

// MaxWindow returns the longest window in the table. Events older than this
// can never influence an admission decision and are safe to prune.
func (t PolicyTable) MaxWindow() time.Duration {
	max := t.fallback.Window
	for _, p := range t.policies {
		if p.Window > max {
			max = p.Window
		}
	}
	return max
}
