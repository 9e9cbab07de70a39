package capability

import (
	"fmt"
	"sort"
)

// Capability names one optional group of data the aggregator can fetch.
type Capability string

const (
	Profile         Capability = "profile"
	ActivityLog     Capability = "activity-log"
	Devices         Capability = "devices"
	LoginLogs       Capability = "login-logs"
	LoginTokens     Capability = "login-tokens"
	Payments        Capability = "payments"
	CheckoutDetails Capability = "checkout-details"
	GameStats       Capability = "game-stats"
	AdminData       Capability = "admin-data"
	BansData        Capability = "bans-data"
	MutesData       Capability = "mutes-data"
	ServersData     Capability = "servers-data"
	AdditionalData  Capability = "additional-data"
)

// All lists every known capability in a stable order.
var All = []Capability{
	Profile, ActivityLog, Devices, LoginLogs, LoginTokens, Payments, CheckoutDetails,
	GameStats, AdminData, BansData, MutesData, ServersData, AdditionalData,
}

// Gameplay lists the capabilities served by the gameplay store. All of them
// need a Steam identifier to join on.
var Gameplay = []Capability{GameStats, AdminData, BansData, MutesData, ServersData}

// Known reports whether c is one of the declared capabilities.
func Known(c Capability) bool {
	for _, k := range All {
		if k == c {
			return true
		}
	}
	return false
}

// Set maps a capability to whether the caller wants it.
type Set map[Capability]bool

// FullSet returns a Set with every capability enabled.
func FullSet() Set {
	s := make(Set, len(All))
	for _, c := range All {
		s[c] = true
	}
	return s
}

// NewSet enables exactly the given capabilities.
func NewSet(enabled ...Capability) Set {
	s := make(Set, len(enabled))
	for _, c := range enabled {
		s[c] = true
	}
	return s
}

// SetOf enables the capabilities named in names. Unknown names are kept so
// that Validate can report them.
func SetOf(names []string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[Capability(n)] = true
	}
	return s
}

// Graph maps a capability to the capabilities it requires.
type Graph map[Capability][]Capability

// DefaultGraph is the fixed dependency graph of the aggregator.
func DefaultGraph() Graph {
	return Graph{
		GameStats:      {Profile},
		AdminData:      {Profile},
		BansData:       {Profile},
		MutesData:      {Profile},
		ServersData:    {Profile},
		AdditionalData: {Devices, ActivityLog},
	}
}

// ValidateGraph rejects graphs that name unknown capabilities or contain a cycle.
func ValidateGraph(g Graph) error {
	for dependent, reqs := range g {
		if !Known(dependent) {
			return fmt.Errorf("dependency graph: unknown capability %q", dependent)
		}
		for _, r := range reqs {
			if !Known(r) {
				return fmt.Errorf("dependency graph: %q requires unknown capability %q", dependent, r)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Capability]int, len(g))

	var visit func(c Capability, path []Capability) error
	visit = func(c Capability, path []Capability) error {
		switch state[c] {
		case visiting:
			return fmt.Errorf("dependency graph: cycle through %v", append(path, c))
		case done:
			return nil
		}
		state[c] = visiting
		for _, r := range g[c] {
			if err := visit(r, append(path, c)); err != nil {
				return err
			}
		}
		state[c] = done
		return nil
	}

	names := make([]string, 0, len(g))
	for c := range g {
		names = append(names, string(c))
	}
	sort.Strings(names)
	for _, n := range names {
		if err := visit(Capability(n), nil); err != nil {
			return err
		}
	}
	return nil
}
