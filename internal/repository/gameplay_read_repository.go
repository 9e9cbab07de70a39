package repository

import (
	"context"

	"github.com/gamepanel/user-service/internal/store"
	"github.com/gamepanel/user-service/shared/models"
)

// GameplayReadRepository reads statistics, moderation and server data from the
// gameplay store. Every lookup is keyed by correlation keys resolved from the
// identity store; an empty key list returns no rows without a round trip.
type GameplayReadRepository struct {
	pool *store.Pool
}

func NewGameplayReadRepository(pool *store.Pool) *GameplayReadRepository {
	return &GameplayReadRepository{pool: pool}
}

func (r *GameplayReadRepository) ListStats(ctx context.Context, steamIDs []string) ([]models.PlayerStat, error) {
	return list[models.PlayerStat](ctx, r.pool, "player stats by steam id", `
		SELECT id, steam_id, server_id, kills, deaths, headshots, playtime_seconds, updated_at
		FROM player_stats
		WHERE steam_id IN (?)
	`, steamIDs)
}

func (r *GameplayReadRepository) ListRecords(ctx context.Context, steamIDs []string) ([]models.PlayerRecord, error) {
	return list[models.PlayerRecord](ctx, r.pool, "player records by steam id", `
		SELECT id, steam_id, server_id, map, style, time_ms, created_at
		FROM player_records
		WHERE steam_id IN (?)
	`, steamIDs)
}

func (r *GameplayReadRepository) ListStageTimes(ctx context.Context, steamIDs []string) ([]models.StageTime, error) {
	return list[models.StageTime](ctx, r.pool, "stage times by steam id", `
		SELECT id, steam_id, server_id, map, stage, time_ms, created_at
		FROM stage_times
		WHERE steam_id IN (?)
	`, steamIDs)
}

func (r *GameplayReadRepository) ListAdmins(ctx context.Context, steamIDs []string) ([]models.Admin, error) {
	return list[models.Admin](ctx, r.pool, "admin entries by steam id", `
		SELECT id, authid, name, flags, immunity, server_id, created_at
		FROM admins
		WHERE authid IN (?)
	`, steamIDs)
}

const banColumns = `id, authid, ip, name, reason, length_minutes, admin_authid, server_id, created_at, removed_at`

// ListBansByTarget returns bans issued against the user.
func (r *GameplayReadRepository) ListBansByTarget(ctx context.Context, steamIDs []string) ([]models.Ban, error) {
	return list[models.Ban](ctx, r.pool, "bans by target", `SELECT `+banColumns+` FROM bans WHERE authid IN (?)`, steamIDs)
}

// ListBansByAdmin returns bans the user issued as an admin.
func (r *GameplayReadRepository) ListBansByAdmin(ctx context.Context, steamIDs []string) ([]models.Ban, error) {
	return list[models.Ban](ctx, r.pool, "bans by acting admin", `SELECT `+banColumns+` FROM bans WHERE admin_authid IN (?)`, steamIDs)
}

// ListBansByIP returns bans placed on any of the user's known addresses.
func (r *GameplayReadRepository) ListBansByIP(ctx context.Context, ips []string) ([]models.Ban, error) {
	return list[models.Ban](ctx, r.pool, "bans by ip", `SELECT `+banColumns+` FROM bans WHERE ip IN (?)`, ips)
}

const muteColumns = `id, authid, name, type, reason, length_minutes, admin_authid, server_id, created_at, removed_at`

func (r *GameplayReadRepository) ListMutesByTarget(ctx context.Context, steamIDs []string) ([]models.Mute, error) {
	return list[models.Mute](ctx, r.pool, "mutes by target", `SELECT `+muteColumns+` FROM mutes WHERE authid IN (?)`, steamIDs)
}

func (r *GameplayReadRepository) ListMutesByAdmin(ctx context.Context, steamIDs []string) ([]models.Mute, error) {
	return list[models.Mute](ctx, r.pool, "mutes by acting admin", `SELECT `+muteColumns+` FROM mutes WHERE admin_authid IN (?)`, steamIDs)
}

func (r *GameplayReadRepository) ListConnections(ctx context.Context, steamIDs []string) ([]models.Connection, error) {
	return list[models.Connection](ctx, r.pool, "game connections by steam id", `
		SELECT id, steam_id, server_id, ip, connected_at, disconnected_at
		FROM player_connections
		WHERE steam_id IN (?)
		ORDER BY connected_at DESC
	`, steamIDs)
}

// ListServers resolves server ids gathered from an earlier query.
func (r *GameplayReadRepository) ListServers(ctx context.Context, ids []int64) ([]models.Server, error) {
	return list[models.Server](ctx, r.pool, "servers by id", `
		SELECT id, name, address, port, enabled
		FROM servers
		WHERE id IN (?)
		ORDER BY id
	`, ids)
}
