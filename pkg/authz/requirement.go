// Package authz implements the authorization core: the role-requirement
// evaluator, the claim-topic issuer gate, the static mutation policy table,
// and the request middleware chain composing them.
package authz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tokenforge/asset-gateway/pkg/identity"
)

// maxRequirementDepth bounds recursion when evaluating requirement trees.
// Trees come from mutation metadata, not user input, but a misconfigured or
// generated tree must not be able to blow the stack.
const maxRequirementDepth = 32

// ErrRequirementTooDeep is returned by Validate for trees nested beyond the
// evaluation depth cap.
var ErrRequirementTooDeep = errors.New("role requirement nested too deep")

// Requirement is a declarative AND/OR tree of role names gating a mutation.
//
// Exactly one of Role, All, Any is set. A Requirement is immutable once
// constructed; evaluation never mutates it.
type Requirement struct {
	Role string
	All  []Requirement
	Any  []Requirement
}

// Role builds a leaf requirement for a single role name.
func Role(name string) Requirement {
	return Requirement{Role: name}
}

// AllOf builds a requirement satisfied when every sub-requirement is.
// AllOf() with no arguments is vacuously satisfied.
func AllOf(reqs ...Requirement) Requirement {
	return Requirement{All: append([]Requirement(nil), reqs...)}
}

// AnyOf builds a requirement satisfied when at least one sub-requirement is.
// AnyOf() with no arguments can never be satisfied.
func AnyOf(reqs ...Requirement) Requirement {
	return Requirement{Any: append([]Requirement(nil), reqs...)}
}

// isLeaf reports whether the requirement is a single role name.
func (r Requirement) isLeaf() bool {
	return r.All == nil && r.Any == nil
}

// Validate checks the tree is well formed: every node has exactly one variant
// set and the nesting stays within the evaluation depth cap.
func (r Requirement) Validate() error {
	return r.validate(1)
}

func (r Requirement) validate(depth int) error {
	if depth > maxRequirementDepth {
		return ErrRequirementTooDeep
	}

	variants := 0
	if r.Role != "" {
		variants++
	}
	if r.All != nil {
		variants++
	}
	if r.Any != nil {
		variants++
	}
	if variants != 1 {
		return fmt.Errorf("requirement must be exactly one of role/all/any, got %d variants", variants)
	}

	for _, sub := range r.All {
		if err := sub.validate(depth + 1); err != nil {
			return err
		}
	}
	for _, sub := range r.Any {
		if err := sub.validate(depth + 1); err != nil {
			return err
		}
	}
	return nil
}

// Satisfies evaluates the caller's role set against the requirement tree.
//
// Pure and deterministic: no I/O, no side effects. Evaluation short-circuits
// on the first decisive sub-result. Trees deeper than the cap evaluate to
// false rather than recursing further.
func Satisfies(roles identity.RoleSet, req Requirement) bool {
	return satisfies(roles, req, 1)
}

func satisfies(roles identity.RoleSet, req Requirement, depth int) bool {
	if depth > maxRequirementDepth {
		return false
	}

	switch {
	case req.All != nil:
		// all of zero requirements is vacuously true
		for _, sub := range req.All {
			if !satisfies(roles, sub, depth+1) {
				return false
			}
		}
		return true
	case req.Any != nil:
		// any of zero requirements is vacuously false; the polarity differs
		// from the empty-all case on purpose
		for _, sub := range req.Any {
			if satisfies(roles, sub, depth+1) {
				return true
			}
		}
		return false
	default:
		return roles.Has(req.Role)
	}
}

// String renders the tree for diagnostics, e.g. `all(admin, any(a, b))`.
func (r Requirement) String() string {
	switch {
	case r.All != nil:
		return "all(" + joinRequirements(r.All) + ")"
	case r.Any != nil:
		return "any(" + joinRequirements(r.Any) + ")"
	default:
		return r.Role
	}
}

func joinRequirements(reqs []Requirement) string {
	parts := make([]string, len(reqs))
	for i, sub := range reqs {
		parts[i] = sub.String()
	}
	return strings.Join(parts, ", ")
}

// UnmarshalYAML decodes the policy-file encoding of a requirement: a bare
// string is a role leaf, a mapping with an `all` or `any` key is a branch.
func (r *Requirement) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var role string
		if err := value.Decode(&role); err != nil {
			return err
		}
		if role == "" {
			return errors.New("role name cannot be empty")
		}
		*r = Requirement{Role: role}
		return nil

	case yaml.MappingNode:
		var node struct {
			All *[]Requirement `yaml:"all"`
			Any *[]Requirement `yaml:"any"`
		}
		if err := value.Decode(&node); err != nil {
			return err
		}
		switch {
		case node.All != nil && node.Any == nil:
			*r = Requirement{All: append([]Requirement{}, *node.All...)}
		case node.Any != nil && node.All == nil:
			*r = Requirement{Any: append([]Requirement{}, *node.Any...)}
		default:
			return errors.New("requirement mapping must have exactly one of `all` or `any`")
		}
		return nil

	default:
		return fmt.Errorf("unsupported requirement node kind %d", value.Kind)
	}
}

// MarshalJSON renders the same tagged shape for API diagnostics.
func (r Requirement) MarshalJSON() ([]byte, error) {
	switch {
	case r.All != nil:
		return json.Marshal(map[string][]Requirement{"all": r.All})
	case r.Any != nil:
		return json.Marshal(map[string][]Requirement{"any": r.Any})
	default:
		return json.Marshal(r.Role)
	}
}
