package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// steamID64Base is the 64-bit id of account 0 in the public universe.
const steamID64Base uint64 = 76561197960265728

// SteamID is an individual Steam account number, independent of notation.
type SteamID uint32

// ParseSteamID accepts the legacy (STEAM_X:Y:Z), 64-bit and [U:1:N] notations.
func ParseSteamID(s string) (SteamID, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(strings.ToUpper(s), "STEAM_"):
		parts := strings.Split(s[len("STEAM_"):], ":")
		if len(parts) != 3 {
			return 0, false
		}
		if _, err := strconv.ParseUint(parts[0], 10, 8); err != nil {
			return 0, false
		}
		y, err := strconv.ParseUint(parts[1], 10, 1)
		if err != nil {
			return 0, false
		}
		z, err := strconv.ParseUint(parts[2], 10, 31)
		if err != nil {
			return 0, false
		}
		return SteamID(z<<1 | y), true

	case strings.HasPrefix(s, "[U:") && strings.HasSuffix(s, "]"):
		parts := strings.Split(s[1:len(s)-1], ":")
		if len(parts) != 3 || parts[1] != "1" {
			return 0, false
		}
		n, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return 0, false
		}
		return SteamID(n), true

	default:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil || n < steamID64Base || n-steamID64Base > uint64(^uint32(0)) {
			return 0, false
		}
		return SteamID(n - steamID64Base), true
	}
}

// ID64 renders the 17-digit community id.
func (id SteamID) ID64() string {
	return strconv.FormatUint(steamID64Base+uint64(id), 10)
}

// ID3 renders [U:1:N].
func (id SteamID) ID3() string {
	return fmt.Sprintf("[U:1:%d]", uint32(id))
}
