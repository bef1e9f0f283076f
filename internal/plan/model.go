package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Domain captures the per-life-area section of a lifestyle plan. Count
// bounds on goals and KPIs are guidance to the generating model, not
// validated invariants; only presence and type are enforced here.
type Domain struct {
	Baseline       string   `json:"baseline"`
	SmartGoals     []string `json:"smart_goals"`
	TrackingKPIs   []string `json:"tracking_kpis"`
	EvidenceQuotes []string `json:"evidence_quotes,omitempty"`
}

// LifestylePlan is the six-domain document produced from one session.
// All six domains must be present; there are no partial plans.
type LifestylePlan struct {
	HealthyEating     Domain `json:"healthy_eating"`
	PhysicalActivity  Domain `json:"physical_activity"`
	Substances        Domain `json:"substances"`
	StressManagement  Domain `json:"stress_management"`
	Sleep             Domain `json:"sleep"`
	SocialConnections Domain `json:"social_connections"`
}

var domainKeys = [...]string{
	"healthy_eating",
	"physical_activity",
	"substances",
	"stress_management",
	"sleep",
	"social_connections",
}

// DomainKeys returns the six domain identifiers in their fixed order.
func DomainKeys() []string {
	keys := make([]string, len(domainKeys))
	copy(keys, domainKeys[:])
	return keys
}

// DisplayName converts an underscore-separated domain key into a
// title-cased heading, e.g. "healthy_eating" -> "Healthy Eating".
func DisplayName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NamedDomain pairs a domain with its key and heading for rendering.
type NamedDomain struct {
	Key         string
	DisplayName string
	Domain      *Domain
}

// Domains returns the plan's domains in their fixed identity order.
func (p *LifestylePlan) Domains() []NamedDomain {
	ptrs := p.domainFields()
	out := make([]NamedDomain, 0, len(domainKeys))
	for _, key := range domainKeys {
		out = append(out, NamedDomain{Key: key, DisplayName: DisplayName(key), Domain: ptrs[key]})
	}
	return out
}

func (p *LifestylePlan) domainFields() map[string]*Domain {
	return map[string]*Domain{
		"healthy_eating":     &p.HealthyEating,
		"physical_activity":  &p.PhysicalActivity,
		"substances":         &p.Substances,
		"stress_management":  &p.StressManagement,
		"sleep":              &p.Sleep,
		"social_connections": &p.SocialConnections,
	}
}

// Parse decodes and strictly validates a raw JSON plan. The language-model
// response is untrusted input: every domain key must be present and every
// required field must carry the documented type, or the whole plan is
// rejected.
func Parse(raw []byte) (*LifestylePlan, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("plan: response is not a JSON object: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("plan: response is not a JSON object")
	}

	p := &LifestylePlan{}
	fields := p.domainFields()
	for _, key := range domainKeys {
		rawDomain, ok := top[key]
		if !ok {
			return nil, fmt.Errorf("plan: missing domain %q", key)
		}
		if err := parseDomain(key, rawDomain, fields[key]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func parseDomain(key string, raw json.RawMessage, out *Domain) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("plan: domain %q is not an object: %w", key, err)
	}
	if obj == nil {
		return fmt.Errorf("plan: domain %q is not an object", key)
	}

	rawBaseline, ok := obj["baseline"]
	if !ok {
		return fmt.Errorf("plan: domain %q is missing baseline", key)
	}
	if isNull(rawBaseline) {
		return fmt.Errorf("plan: domain %q baseline must be a string", key)
	}
	if err := json.Unmarshal(rawBaseline, &out.Baseline); err != nil {
		return fmt.Errorf("plan: domain %q baseline must be a string: %w", key, err)
	}

	goals, err := parseStringList(key, "smart_goals", obj, true)
	if err != nil {
		return err
	}
	out.SmartGoals = goals

	kpis, err := parseStringList(key, "tracking_kpis", obj, true)
	if err != nil {
		return err
	}
	out.TrackingKPIs = kpis

	quotes, err := parseStringList(key, "evidence_quotes", obj, false)
	if err != nil {
		return err
	}
	out.EvidenceQuotes = quotes

	return nil
}

func parseStringList(domain, field string, obj map[string]json.RawMessage, required bool) ([]string, error) {
	raw, ok := obj[field]
	if !ok || isNull(raw) {
		if required && !ok {
			return nil, fmt.Errorf("plan: domain %q is missing %s", domain, field)
		}
		if required {
			return nil, fmt.Errorf("plan: domain %q %s must be an array of strings", domain, field)
		}
		return nil, nil
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("plan: domain %q %s must be an array of strings: %w", domain, field, err)
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("plan: domain %q %s must contain only strings", domain, field)
		}
		list = append(list, s)
	}
	return list, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
