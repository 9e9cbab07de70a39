package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gamepanel/user-service/internal/capability"
	"github.com/gamepanel/user-service/internal/keys"
	"github.com/gamepanel/user-service/shared/models"
)

// assemble merges the phase results into the response document. A group is
// present exactly when its capability is enabled in plan, whether or not its
// queries succeeded. The output does not depend on the order in which
// sub-queries completed.
func assemble(plan capability.Plan, k keys.CorrelationKeySet, id *identityResults, gp *gameplayResults) *models.UserDocument {
	doc := &models.UserDocument{}

	if plan.Enabled(capability.Profile) {
		doc.Identity = &models.IdentityGroup{
			Profile:  id.profile.profile,
			SteamIDs: nonNil(k.SteamIDs),
		}
	}

	if plan.Any(capability.ActivityLog, capability.Devices, capability.LoginLogs, capability.LoginTokens) {
		act := &models.ActivityGroup{}
		if plan.Enabled(capability.ActivityLog) {
			act.Log = ptr(nonNil(id.activity))
		}
		if plan.Enabled(capability.Devices) {
			act.Devices = ptr(nonNil(id.devices))
		}
		if plan.Enabled(capability.LoginLogs) {
			act.LoginLogs = ptr(nonNil(id.loginLogs))
		}
		if plan.Enabled(capability.LoginTokens) {
			act.LoginTokens = ptr(nonNil(id.loginTokens))
		}
		doc.Activity = act
	}

	if plan.Any(capability.Payments, capability.CheckoutDetails) {
		pay := &models.PaymentsGroup{}
		if plan.Enabled(capability.Payments) {
			made, received := partitionPayments(k.UserID, id.payments)
			pay.Made = &made
			pay.Received = &received
		}
		if plan.Enabled(capability.CheckoutDetails) {
			pay.CheckoutDetails = ptr(nonNil(id.checkout))
		}
		doc.Payments = pay
	}

	if plan.Enabled(capability.GameStats) {
		gs := gp.gameStats
		if gs == nil {
			gs = &gameStatsResults{}
		}
		doc.GameStats = &models.GameStatsGroup{
			Stats:      nonNil(gs.stats),
			Records:    nonNil(gs.records),
			StageTimes: nonNil(gs.stageTimes),
			Servers:    sortServers(gs.servers),
		}
	}

	if plan.Enabled(capability.AdminData) {
		ad := gp.admin
		if ad == nil {
			ad = &adminResults{}
		}
		doc.Admin = &models.AdminGroup{
			Admins:  nonNil(ad.admins),
			Servers: sortServers(ad.servers),
		}
	}

	if plan.Enabled(capability.BansData) {
		b := gp.bans
		if b == nil {
			b = &banResults{}
		}
		doc.Bans = &models.BansGroup{
			Bans:    unionBans(b.byTarget, b.byAdmin, b.byIP),
			Servers: sortServers(b.servers),
		}
	}

	if plan.Enabled(capability.MutesData) {
		m := gp.mutes
		if m == nil {
			m = &muteResults{}
		}
		doc.Mutes = &models.MutesGroup{
			Mutes:   unionMutes(m.byTarget, m.byAdmin),
			Servers: sortServers(m.servers),
		}
	}

	if plan.Enabled(capability.ServersData) {
		c := gp.connections
		if c == nil {
			c = &connectionResults{}
		}
		doc.Servers = &models.ServersGroup{
			Connections: nonNil(c.connections),
			Servers:     sortServers(c.servers),
		}
	}

	if plan.Enabled(capability.AdditionalData) {
		// Alt-account inference has no derivation yet; the group is a placeholder.
		doc.Additional = &models.AdditionalGroup{
			PotentialAlts: []int64{},
			SharedIPs:     []string{},
		}
	}

	return doc
}

// normalizeUserID parses a text user id for comparison with the numeric
// primary id. Surrounding whitespace and a leading '+' are accepted; anything
// that is not an exact base-10 int64 matches nobody.
func normalizeUserID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// partitionPayments splits payments into those userID made and those it
// received. A payment to oneself lands in both lists.
func partitionPayments(userID int64, payments []models.Payment) (made, received []models.Payment) {
	made, received = []models.Payment{}, []models.Payment{}
	for _, p := range payments {
		if id, ok := normalizeUserID(p.PayerID); ok && id == userID {
			made = append(made, p)
		}
		if id, ok := normalizeUserID(p.RecipientID); ok && id == userID {
			received = append(received, p)
		}
	}
	return made, received
}

// unionByID concatenates lists keeping the first row seen for each id.
func unionByID[T any](id func(T) int64, lists ...[]T) []T {
	seen := make(map[int64]struct{})
	out := []T{}
	for _, list := range lists {
		for _, row := range list {
			if _, dup := seen[id(row)]; dup {
				continue
			}
			seen[id(row)] = struct{}{}
			out = append(out, row)
		}
	}
	return out
}

// unionBans merges bans against the user, bans the user issued and bans on
// the user's addresses, newest first.
func unionBans(lists ...[]models.Ban) []models.Ban {
	out := unionByID(func(b models.Ban) int64 { return b.ID }, lists...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// unionMutes merges mutes against the user and mutes the user issued, newest first.
func unionMutes(lists ...[]models.Mute) []models.Mute {
	out := unionByID(func(m models.Mute) int64 { return m.ID }, lists...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func sortServers(servers []models.Server) []models.Server {
	out := unionByID(func(s models.Server) int64 { return s.ID }, servers)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// serverIDs collects the distinct server ids referenced by a group's rows.
type serverIDs struct {
	set map[int64]struct{}
}

func newServerIDs() *serverIDs {
	return &serverIDs{set: make(map[int64]struct{})}
}

func (s *serverIDs) add(id int64) {
	s.set[id] = struct{}{}
}

func (s *serverIDs) addPtr(id *int64) {
	if id != nil {
		s.add(*id)
	}
}

func (s *serverIDs) empty() bool {
	return len(s.set) == 0
}

// list returns the ids in ascending order.
func (s *serverIDs) list() []int64 {
	out := make([]int64, 0, len(s.set))
	for id := range s.set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}
