package filter

import (
	"fmt"

	"github.com/yairfalse/machine/pkg/machine"
)

// ClauseKind identifies a client-side predicate.
type ClauseKind int

const (
	ClauseName ClauseKind = iota
	ClauseTag
	ClauseType
	ClauseRegion
	ClauseCreated
)

func (k ClauseKind) String() string {
	switch k {
	case ClauseName:
		return "name"
	case ClauseTag:
		return "tag"
	case ClauseType:
		return "type"
	case ClauseRegion:
		return "region"
	case ClauseCreated:
		return "created"
	default:
		return fmt.Sprintf("ClauseKind(%d)", int(k))
	}
}

// Clause is one optional filter of a Spec.
type Clause struct {
	Kind  ClauseKind
	Value string
}

// Match reports whether r satisfies the clause.
func (c Clause) Match(r machine.Record) bool {
	switch c.Kind {
	case ClauseName:
		return r.Name == c.Value
	case ClauseTag:
		return r.Tags.Has(c.Value)
	case ClauseType:
		return r.Tags.HasType(c.Value)
	case ClauseRegion:
		return r.Region == c.Value
	case ClauseCreated:
		return r.Tags.IsCreated()
	default:
		return false
	}
}

func (c Clause) String() string {
	if c.Kind == ClauseCreated {
		return c.Kind.String()
	}
	return fmt.Sprintf("%s=%s", c.Kind, c.Value)
}

// Clauses returns the client-side predicate chain for spec. It is applied
// whatever was pushed server-side.
func Clauses(spec Spec) []Clause {
	var clauses []Clause
	if spec.Name != "" {
		clauses = append(clauses, Clause{Kind: ClauseName, Value: spec.Name})
	}
	if spec.Tag != "" {
		clauses = append(clauses, Clause{Kind: ClauseTag, Value: spec.Tag})
	}
	if spec.Type != "" {
		clauses = append(clauses, Clause{Kind: ClauseType, Value: spec.Type})
	}
	if spec.Region != "" {
		clauses = append(clauses, Clause{Kind: ClauseRegion, Value: spec.Region})
	}
	if !spec.IncludeForeign {
		clauses = append(clauses, Clause{Kind: ClauseCreated})
	}
	return clauses
}
