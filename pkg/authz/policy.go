package authz

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// StrategyKind selects the single authorization strategy of a mutation.
type StrategyKind int

const (
	// StrategyRole gates the mutation on a role-requirement tree.
	StrategyRole StrategyKind = iota + 1
	// StrategyClaimTopic gates the mutation on the caller being a registered
	// trusted issuer for a claim topic.
	StrategyClaimTopic
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyRole:
		return "role"
	case StrategyClaimTopic:
		return "claimTopic"
	default:
		return "unknown"
	}
}

// Strategy is the declared authorization strategy for one mutation. Exactly
// one of Requirement or ClaimTopic is meaningful, selected by Kind; the two
// are never evaluated redundantly.
type Strategy struct {
	Kind        StrategyKind
	Requirement Requirement
	ClaimTopic  uint64
}

// RoleStrategy declares a role-tree gated mutation.
func RoleStrategy(req Requirement) Strategy {
	return Strategy{Kind: StrategyRole, Requirement: req}
}

// ClaimTopicStrategy declares a trusted-issuer gated mutation.
func ClaimTopicStrategy(topic uint64) Strategy {
	return Strategy{Kind: StrategyClaimTopic, ClaimTopic: topic}
}

// Policy is the static, exhaustive dispatch table from mutation name to its
// authorization strategy. It is configuration: built once at startup and
// never mutated afterwards.
type Policy struct {
	strategies map[string]Strategy
}

// NewPolicy validates and freezes a dispatch table. Every mutation must carry
// exactly one well-formed strategy; violations fail construction rather than
// surfacing at request time.
func NewPolicy(strategies map[string]Strategy) (*Policy, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("policy has no mutations")
	}

	frozen := make(map[string]Strategy, len(strategies))
	for mutation, strat := range strategies {
		if mutation == "" {
			return nil, fmt.Errorf("policy contains an unnamed mutation")
		}
		switch strat.Kind {
		case StrategyRole:
			if err := strat.Requirement.Validate(); err != nil {
				return nil, fmt.Errorf("mutation %q: invalid role requirement: %w", mutation, err)
			}
		case StrategyClaimTopic:
			if strat.ClaimTopic == 0 {
				return nil, fmt.Errorf("mutation %q: claim topic must be non-zero", mutation)
			}
		default:
			return nil, fmt.Errorf("mutation %q: no authorization strategy declared", mutation)
		}
		frozen[mutation] = strat
	}

	return &Policy{strategies: frozen}, nil
}

// Strategy returns the declared strategy for a mutation.
func (p *Policy) Strategy(mutation string) (Strategy, bool) {
	strat, ok := p.strategies[mutation]
	return strat, ok
}

// Mutations returns the registered mutation names, sorted.
func (p *Policy) Mutations() []string {
	names := make([]string, 0, len(p.strategies))
	for name := range p.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// policyFile is the YAML shape of the dispatch table:
//
//	mutations:
//	  mint:
//	    roles:
//	      any: [supplyManagement, admin]
//	  updateCollateral:
//	    claimTopic: 5
type policyFile struct {
	Mutations map[string]policyEntry `yaml:"mutations"`
}

type policyEntry struct {
	Roles      *Requirement `yaml:"roles"`
	ClaimTopic *uint64      `yaml:"claimTopic"`
}

// ParsePolicy decodes and validates a YAML dispatch table.
func ParsePolicy(data []byte) (*Policy, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	strategies := make(map[string]Strategy, len(file.Mutations))
	for mutation, entry := range file.Mutations {
		switch {
		case entry.Roles != nil && entry.ClaimTopic == nil:
			strategies[mutation] = RoleStrategy(*entry.Roles)
		case entry.ClaimTopic != nil && entry.Roles == nil:
			strategies[mutation] = ClaimTopicStrategy(*entry.ClaimTopic)
		case entry.Roles != nil && entry.ClaimTopic != nil:
			return nil, fmt.Errorf("mutation %q declares both roles and claimTopic", mutation)
		default:
			return nil, fmt.Errorf("mutation %q declares neither roles nor claimTopic", mutation)
		}
	}

	return NewPolicy(strategies)
}

// LoadPolicy reads and parses the dispatch table from a YAML file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicy(data)
}
