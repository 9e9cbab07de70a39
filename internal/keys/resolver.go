// Package keys derives the identifiers used to correlate identity-store rows
// with gameplay-store rows. Resolution runs once per request, after the
// identity phase has settled and before any gameplay query is issued.
package keys

import (
	"errors"
	"net/netip"
	"sort"
	"strings"

	"github.com/gamepanel/user-service/shared/models"
)

// ErrKeysUnavailable means gameplay data was requested but the profile
// yielded no Steam identifier to join on.
var ErrKeysUnavailable = errors.New("identifiers required but unavailable")

// CorrelationKeySet is the frozen set of join keys for one user.
// Callers must treat the slices as read-only.
type CorrelationKeySet struct {
	UserID   int64
	SteamIDs []string
	IPs      []string
}

// HasSteamIDs reports whether at least one Steam identifier was resolved.
func (k CorrelationKeySet) HasSteamIDs() bool {
	return len(k.SteamIDs) > 0
}

// Sources are the identity-store results that feed key resolution.
// Devices are expected to carry their IP history.
type Sources struct {
	Profile   *models.Profile
	Devices   []models.Device
	LoginLogs []models.LoginLog
}

// Resolve builds the key set for userID. When requireSteam is set and no
// Steam identifier can be found it returns ErrKeysUnavailable.
func Resolve(userID int64, src Sources, requireSteam bool) (CorrelationKeySet, error) {
	keys := CorrelationKeySet{
		UserID:   userID,
		SteamIDs: SteamIDs(src.Profile),
		IPs:      IPs(src.Devices, src.LoginLogs),
	}
	if requireSteam && !keys.HasSteamIDs() {
		return CorrelationKeySet{}, ErrKeysUnavailable
	}
	return keys, nil
}

// SteamIDs returns the profile's legacy, 64-bit and [U:1:N] identifiers in
// that order, skipping empty values. A missing 64-bit or [U:1:N] value is
// derived from the first notation that parses. The legacy form is never
// derived because its universe digit varies between games.
func SteamIDs(p *models.Profile) []string {
	if p == nil {
		return []string{}
	}
	raw := [3]string{deref(p.SteamID), deref(p.SteamID64), deref(p.SteamID3)}

	var (
		parsed SteamID
		found  bool
	)
	for _, v := range raw {
		if id, ok := ParseSteamID(v); ok {
			parsed, found = id, true
			break
		}
	}
	if found {
		derived := [3]string{"", parsed.ID64(), parsed.ID3()}
		for i := range raw {
			if raw[i] == "" && derived[i] != "" {
				raw[i] = derived[i]
			}
		}
	}

	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// IPs is the sorted union of every address seen on the user's devices and
// login attempts.
func IPs(devices []models.Device, logins []models.LoginLog) []string {
	set := make(map[string]struct{})
	add := func(raw string) {
		if ip := normalizeIP(raw); ip != "" {
			set[ip] = struct{}{}
		}
	}
	for _, d := range devices {
		add(deref(d.LastIP))
		for _, h := range d.IPs {
			add(h.IPAddress)
		}
	}
	for _, l := range logins {
		add(deref(l.IPAddress))
	}

	out := make([]string, 0, len(set))
	for ip := range set {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

// normalizeIP trims s and, when it parses, returns the canonical address
// without port or IPv4-in-IPv6 mapping. Unparsable values are kept as trimmed.
func normalizeIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.Unmap().String()
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap().String()
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
