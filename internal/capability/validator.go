package capability

import (
	"fmt"
	"sort"
	"strings"
)

// Violation is one unmet dependency: Dependent is enabled but Missing is not.
type Violation struct {
	Dependent Capability
	Missing   Capability
}

// DependencyError lists every violated dependency of a capability set.
type DependencyError struct {
	Violations []Violation
}

func (e *DependencyError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s requires %s", v.Dependent, v.Missing))
	}
	return "invalid capability set: " + strings.Join(parts, "; ")
}

// Plan is a validated capability set. The zero value enables nothing.
type Plan struct {
	enabled Set
}

// Enabled reports whether c was requested.
func (p Plan) Enabled(c Capability) bool {
	return p.enabled[c]
}

// Any reports whether at least one of cs was requested.
func (p Plan) Any(cs ...Capability) bool {
	for _, c := range cs {
		if p.enabled[c] {
			return true
		}
	}
	return false
}

// NeedsGameplay reports whether any gameplay-store capability was requested.
func (p Plan) NeedsGameplay() bool {
	return p.Any(Gameplay...)
}

// List returns the enabled capabilities in declaration order.
func (p Plan) List() []Capability {
	out := make([]Capability, 0, len(p.enabled))
	for _, c := range All {
		if p.enabled[c] {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks set against g before any I/O happens. Unknown capability
// names are reported as violations against themselves.
func Validate(set Set, g Graph) (Plan, error) {
	var violations []Violation
	enabled := make(Set, len(set))
	for c, on := range set {
		if !on {
			continue
		}
		if !Known(c) {
			violations = append(violations, Violation{Dependent: c, Missing: c})
			continue
		}
		enabled[c] = true
		for _, req := range g[c] {
			if !set[req] {
				violations = append(violations, Violation{Dependent: c, Missing: req})
			}
		}
	}
	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].Dependent != violations[j].Dependent {
				return violations[i].Dependent < violations[j].Dependent
			}
			return violations[i].Missing < violations[j].Missing
		})
		return Plan{}, &DependencyError{Violations: violations}
	}
	return Plan{enabled: enabled}, nil
}

// MustValidate is Validate for static sets known to be valid.
func MustValidate(set Set, g Graph) Plan {
	p, err := Validate(set, g)
	if err != nil {
		panic(err)
	}
	return p
}
