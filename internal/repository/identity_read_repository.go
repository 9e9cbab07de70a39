package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/gamepanel/user-service/internal/store"
	"github.com/gamepanel/user-service/shared/models"
)

// ErrUserNotFound is returned when the primary user id has no users row.
var ErrUserNotFound = errors.New("user not found")

// Row caps for the unbounded history tables.
const (
	activityLogLimit = 500
	loginLogLimit    = 500
)

// IdentityReadRepository reads account, device, login and payment data from
// the identity store.
type IdentityReadRepository struct {
	pool *store.Pool
}

func NewIdentityReadRepository(pool *store.Pool) *IdentityReadRepository {
	return &IdentityReadRepository{pool: pool}
}

// GetProfile returns the users row for id, or ErrUserNotFound.
func (r *IdentityReadRepository) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	q := store.NewQuery("profile by id", `
		SELECT id, username, email, avatar_url, role,
			   steam_id, steam_id64, steam_id3,
			   created_at, last_login_at
		FROM users
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	var profile models.Profile
	err := r.pool.Get(ctx, &profile, q)
	if errors.Is(err, store.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *IdentityReadRepository) ListActivity(ctx context.Context, userID int64) ([]models.ActivityEntry, error) {
	return list[models.ActivityEntry](ctx, r.pool, "activity log by user", `
		SELECT id, user_id, action, details, ip_address, created_at
		FROM activity_log
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, activityLogLimit)
}

func (r *IdentityReadRepository) ListDevices(ctx context.Context, userID int64) ([]models.Device, error) {
	return list[models.Device](ctx, r.pool, "devices by user", `
		SELECT id, user_id, name, user_agent, last_ip, first_seen_at, last_seen_at
		FROM devices
		WHERE user_id = ?
		ORDER BY last_seen_at DESC
	`, userID)
}

// ListDeviceIPs returns the IP history of every device in deviceIDs.
func (r *IdentityReadRepository) ListDeviceIPs(ctx context.Context, deviceIDs []int64) ([]models.DeviceIP, error) {
	return list[models.DeviceIP](ctx, r.pool, "ip history by device", `
		SELECT device_id, ip_address, first_seen_at, last_seen_at
		FROM device_ips
		WHERE device_id IN (?)
		ORDER BY last_seen_at DESC
	`, deviceIDs)
}

func (r *IdentityReadRepository) ListLoginLogs(ctx context.Context, userID int64) ([]models.LoginLog, error) {
	return list[models.LoginLog](ctx, r.pool, "login logs by user", `
		SELECT id, ip_address, user_agent, success, created_at
		FROM login_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, loginLogLimit)
}

func (r *IdentityReadRepository) ListLoginTokens(ctx context.Context, userID int64) ([]models.LoginToken, error) {
	return list[models.LoginToken](ctx, r.pool, "login tokens by user", `
		SELECT id, device_name, revoked, created_at, expires_at
		FROM login_tokens
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
}

// ListPayments returns every payment the user made or received. Payer and
// recipient are text columns, so the id is bound as its decimal string.
func (r *IdentityReadRepository) ListPayments(ctx context.Context, userID int64) ([]models.Payment, error) {
	id := strconv.FormatInt(userID, 10)
	return list[models.Payment](ctx, r.pool, "payments by payer or recipient", `
		SELECT id, payer_id, recipient_id, amount, currency, status, created_at
		FROM payments
		WHERE payer_id = ? OR recipient_id = ?
		ORDER BY created_at DESC
	`, id, id)
}

func (r *IdentityReadRepository) ListCheckoutDetails(ctx context.Context, userID int64) ([]models.CheckoutDetail, error) {
	return list[models.CheckoutDetail](ctx, r.pool, "checkout details by user", `
		SELECT id, provider, reference, amount, currency, status, created_at
		FROM checkout_details
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
}
