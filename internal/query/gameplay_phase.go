package query

import (
	"context"

	"github.com/gamepanel/user-service/internal/capability"
	"github.com/gamepanel/user-service/internal/keys"
	"github.com/gamepanel/user-service/shared/models"
)

type gameStatsResults struct {
	stats      []models.PlayerStat
	records    []models.PlayerRecord
	stageTimes []models.StageTime
	servers    []models.Server
}

type adminResults struct {
	admins  []models.Admin
	servers []models.Server
}

type banResults struct {
	byTarget []models.Ban
	byAdmin  []models.Ban
	byIP     []models.Ban
	servers  []models.Server
}

type muteResults struct {
	byTarget []models.Mute
	byAdmin  []models.Mute
	servers  []models.Server
}

type connectionResults struct {
	connections []models.Connection
	servers     []models.Server
}

// gameplayResults holds everything the gameplay phase gathered. Groups of
// capabilities that were not requested stay nil.
type gameplayResults struct {
	gameStats   *gameStatsResults
	admin       *adminResults
	bans        *banResults
	mutes       *muteResults
	connections *connectionResults
}

// runGameplayPhase issues every gameplay-store query enabled by plan, keyed
// by the frozen key set. Each group fetches its rows first and then resolves
// the servers those rows reference.
func (s *UserQueryService) runGameplayPhase(p *phase, plan capability.Plan, k keys.CorrelationKeySet) *gameplayResults {
	res := &gameplayResults{}

	if plan.Enabled(capability.GameStats) {
		gs := &gameStatsResults{}
		res.gameStats = gs
		p.chain(func(sub *phase) {
			isolate(sub, &gs.stats, capability.GameStats, []models.PlayerStat{}, func(ctx context.Context) ([]models.PlayerStat, error) {
				return s.gameplay.ListStats(ctx, k.SteamIDs)
			})
			isolate(sub, &gs.records, capability.GameStats, []models.PlayerRecord{}, func(ctx context.Context) ([]models.PlayerRecord, error) {
				return s.gameplay.ListRecords(ctx, k.SteamIDs)
			})
			isolate(sub, &gs.stageTimes, capability.GameStats, []models.StageTime{}, func(ctx context.Context) ([]models.StageTime, error) {
				return s.gameplay.ListStageTimes(ctx, k.SteamIDs)
			})
			sub.wait()

			ids := newServerIDs()
			for _, r := range gs.stats {
				ids.add(r.ServerID)
			}
			for _, r := range gs.records {
				ids.add(r.ServerID)
			}
			for _, r := range gs.stageTimes {
				ids.add(r.ServerID)
			}
			s.resolveServers(sub, &gs.servers, capability.GameStats, ids)
		})
	}

	if plan.Enabled(capability.AdminData) {
		ad := &adminResults{}
		res.admin = ad
		p.chain(func(sub *phase) {
			isolate(sub, &ad.admins, capability.AdminData, []models.Admin{}, func(ctx context.Context) ([]models.Admin, error) {
				return s.gameplay.ListAdmins(ctx, k.SteamIDs)
			})
			sub.wait()

			ids := newServerIDs()
			for _, a := range ad.admins {
				ids.addPtr(a.ServerID)
			}
			s.resolveServers(sub, &ad.servers, capability.AdminData, ids)
		})
	}

	if plan.Enabled(capability.BansData) {
		bans := &banResults{}
		res.bans = bans
		p.chain(func(sub *phase) {
			isolate(sub, &bans.byTarget, capability.BansData, []models.Ban{}, func(ctx context.Context) ([]models.Ban, error) {
				return s.gameplay.ListBansByTarget(ctx, k.SteamIDs)
			})
			isolate(sub, &bans.byAdmin, capability.BansData, []models.Ban{}, func(ctx context.Context) ([]models.Ban, error) {
				return s.gameplay.ListBansByAdmin(ctx, k.SteamIDs)
			})
			if len(k.IPs) > 0 {
				isolate(sub, &bans.byIP, capability.BansData, []models.Ban{}, func(ctx context.Context) ([]models.Ban, error) {
					return s.gameplay.ListBansByIP(ctx, k.IPs)
				})
			}
			sub.wait()

			ids := newServerIDs()
			for _, list := range [][]models.Ban{bans.byTarget, bans.byAdmin, bans.byIP} {
				for _, b := range list {
					ids.addPtr(b.ServerID)
				}
			}
			s.resolveServers(sub, &bans.servers, capability.BansData, ids)
		})
	}

	if plan.Enabled(capability.MutesData) {
		mutes := &muteResults{}
		res.mutes = mutes
		p.chain(func(sub *phase) {
			isolate(sub, &mutes.byTarget, capability.MutesData, []models.Mute{}, func(ctx context.Context) ([]models.Mute, error) {
				return s.gameplay.ListMutesByTarget(ctx, k.SteamIDs)
			})
			isolate(sub, &mutes.byAdmin, capability.MutesData, []models.Mute{}, func(ctx context.Context) ([]models.Mute, error) {
				return s.gameplay.ListMutesByAdmin(ctx, k.SteamIDs)
			})
			sub.wait()

			ids := newServerIDs()
			for _, list := range [][]models.Mute{mutes.byTarget, mutes.byAdmin} {
				for _, m := range list {
					ids.addPtr(m.ServerID)
				}
			}
			s.resolveServers(sub, &mutes.servers, capability.MutesData, ids)
		})
	}

	if plan.Enabled(capability.ServersData) {
		conns := &connectionResults{}
		res.connections = conns
		p.chain(func(sub *phase) {
			isolate(sub, &conns.connections, capability.ServersData, []models.Connection{}, func(ctx context.Context) ([]models.Connection, error) {
				return s.gameplay.ListConnections(ctx, k.SteamIDs)
			})
			sub.wait()

			ids := newServerIDs()
			for _, c := range conns.connections {
				ids.add(c.ServerID)
			}
			s.resolveServers(sub, &conns.servers, capability.ServersData, ids)
		})
	}

	p.wait()
	return res
}

// resolveServers runs the follow-up server lookup for one group. Server ids
// are already distinct, and no query is issued when there are none.
func (s *UserQueryService) resolveServers(p *phase, dst *[]models.Server, c capability.Capability, ids *serverIDs) {
	if ids.empty() {
		*dst = []models.Server{}
		return
	}
	list := ids.list()
	isolate(p, dst, c, []models.Server{}, func(ctx context.Context) ([]models.Server, error) {
		return s.gameplay.ListServers(ctx, list)
	})
}
