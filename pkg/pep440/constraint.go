package pep440

import (
	"fmt"
	"strings"
)

// Op is a constraint operator.
type Op int

const (
	// OpExact requires the version to match exactly (==).
	OpExact Op = iota
	// OpGte requires the version to be at least the bound (>=).
	OpGte
	// OpLte requires the version to be at most the bound (<=).
	OpLte
	// OpGt requires the version to be above the bound (>).
	OpGt
	// OpLt requires the version to be below the bound (<).
	OpLt
	// OpNe excludes a single version (!=).
	OpNe
	// OpCaret allows changes that keep the leftmost non-zero component (^).
	OpCaret
	// OpTilde allows patch-level changes when a patch is given (~, ~=).
	OpTilde
)

// String returns the operator's spelling in constraint strings.
func (o Op) String() string {
	switch o {
	case OpExact:
		return "=="
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpNe:
		return "!="
	case OpCaret:
		return "^"
	case OpTilde:
		return "~"
	}
	return "?"
}

// Constraint restricts acceptable versions to those matching Op relative
// to Version. A requirement carries an ordered conjunctive slice of these.
type Constraint struct {
	Op      Op
	Version Version
}

// String returns the constraint's canonical spelling, e.g. ">=1.2.3".
func (c Constraint) String() string {
	return c.Op.String() + c.Version.String()
}

// ParseConstraint parses a single constraint token such as ">=1.0" or "^2".
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, fmt.Errorf("empty constraint")
	}

	op := OpExact
	switch {
	case strings.HasPrefix(s, "=="):
		s = s[2:]
	case strings.HasPrefix(s, ">="):
		op, s = OpGte, s[2:]
	case strings.HasPrefix(s, "<="):
		op, s = OpLte, s[2:]
	case strings.HasPrefix(s, "!="):
		op, s = OpNe, s[2:]
	case strings.HasPrefix(s, "~="):
		op, s = OpTilde, s[2:]
	case strings.HasPrefix(s, ">"):
		op, s = OpGt, s[1:]
	case strings.HasPrefix(s, "<"):
		op, s = OpLt, s[1:]
	case strings.HasPrefix(s, "^"):
		op, s = OpCaret, s[1:]
	case strings.HasPrefix(s, "~"):
		op, s = OpTilde, s[1:]
	case strings.HasPrefix(s, "="):
		s = s[1:]
	}

	v, err := Parse(s)
	if err != nil {
		return Constraint{}, fmt.Errorf("invalid constraint %q: %w", s, err)
	}
	return Constraint{Op: op, Version: v}, nil
}

// ParseConstraints parses a comma/whitespace-delimited constraint string
// such as ">=1.0, <2.0" into an ordered conjunctive slice. The wildcard "*"
// yields an empty slice, meaning any version. Any unparseable token fails
// the whole call.
func ParseConstraints(s string) ([]Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return nil, nil
	}

	var result []Constraint
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		c, err := ParseConstraint(tok)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// Match reports whether v satisfies the constraint. Caret and tilde expand
// to a lower-inclusive, upper-exclusive range.
func (c Constraint) Match(v Version) bool {
	switch c.Op {
	case OpExact:
		return v.Equal(c.Version)
	case OpGte:
		return v.Compare(c.Version) >= 0
	case OpLte:
		return v.Compare(c.Version) <= 0
	case OpGt:
		return v.Compare(c.Version) > 0
	case OpLt:
		return v.Compare(c.Version) < 0
	case OpNe:
		return !v.Equal(c.Version)
	case OpCaret, OpTilde:
		return v.Compare(c.Version) >= 0 && v.Less(c.upperBound())
	}
	return false
}

// MatchAll reports whether v satisfies every constraint in the slice.
// An empty slice means any version.
func MatchAll(constraints []Constraint, v Version) bool {
	for _, c := range constraints {
		if !c.Match(v) {
			return false
		}
	}
	return true
}

// upperBound computes the exclusive upper limit of a caret or tilde range.
func (c Constraint) upperBound() Version {
	v := c.Version
	if c.Op == OpTilde {
		// ~1.2.3 allows <1.3.0; ~1.2 and ~1 allow the next major.
		if v.components() >= 3 {
			return New(v.major, v.minor+1, 0)
		}
		return New(v.major+1, 0, 0)
	}
	// Caret keeps the leftmost non-zero component fixed.
	switch {
	case v.major > 0:
		return New(v.major+1, 0, 0)
	case v.minor > 0:
		return New(0, v.minor+1, 0)
	default:
		return New(0, 0, v.patch+1)
	}
}
