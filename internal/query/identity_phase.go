package query

import (
	"context"
	"errors"

	"github.com/gamepanel/user-service/internal/capability"
	"github.com/gamepanel/user-service/internal/repository"
	"github.com/gamepanel/user-service/shared/models"
)

// profileLookup is the outcome of the anchor query. A missing row is a
// result, not a failure.
type profileLookup struct {
	profile  *models.Profile
	notFound bool
}

// identityResults holds everything the identity phase gathered. Slices of
// capabilities that were not requested stay nil.
type identityResults struct {
	profile     profileLookup
	activity    []models.ActivityEntry
	devices     []models.Device
	loginLogs   []models.LoginLog
	loginTokens []models.LoginToken
	payments    []models.Payment
	checkout    []models.CheckoutDetail
}

// runIdentityPhase issues every identity-store query enabled by plan and
// returns once all of them have settled. The profile lookup always runs
// because it decides whether the user exists.
func (s *UserQueryService) runIdentityPhase(p *phase, plan capability.Plan, userID int64) *identityResults {
	res := &identityResults{}

	isolate(p, &res.profile, capability.Profile, profileLookup{}, func(ctx context.Context) (profileLookup, error) {
		profile, err := s.identity.GetProfile(ctx, userID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return profileLookup{notFound: true}, nil
		}
		if err != nil {
			return profileLookup{}, err
		}
		return profileLookup{profile: profile}, nil
	})

	if plan.Enabled(capability.ActivityLog) {
		isolate(p, &res.activity, capability.ActivityLog, []models.ActivityEntry{}, func(ctx context.Context) ([]models.ActivityEntry, error) {
			return s.identity.ListActivity(ctx, userID)
		})
	}

	if plan.Enabled(capability.Devices) {
		p.chain(func(sub *phase) {
			var devices []models.Device
			isolate(sub, &devices, capability.Devices, []models.Device{}, func(ctx context.Context) ([]models.Device, error) {
				return s.identity.ListDevices(ctx, userID)
			})
			sub.wait()

			var history []models.DeviceIP
			if len(devices) > 0 {
				isolate(sub, &history, capability.Devices, []models.DeviceIP{}, func(ctx context.Context) ([]models.DeviceIP, error) {
					return s.identity.ListDeviceIPs(ctx, deviceIDs(devices))
				})
				sub.wait()
			}

			res.devices = attachDeviceIPs(devices, history)
		})
	}

	if plan.Enabled(capability.LoginLogs) {
		isolate(p, &res.loginLogs, capability.LoginLogs, []models.LoginLog{}, func(ctx context.Context) ([]models.LoginLog, error) {
			return s.identity.ListLoginLogs(ctx, userID)
		})
	}

	if plan.Enabled(capability.LoginTokens) {
		isolate(p, &res.loginTokens, capability.LoginTokens, []models.LoginToken{}, func(ctx context.Context) ([]models.LoginToken, error) {
			return s.identity.ListLoginTokens(ctx, userID)
		})
	}

	if plan.Enabled(capability.Payments) {
		isolate(p, &res.payments, capability.Payments, []models.Payment{}, func(ctx context.Context) ([]models.Payment, error) {
			return s.identity.ListPayments(ctx, userID)
		})
	}

	if plan.Enabled(capability.CheckoutDetails) {
		isolate(p, &res.checkout, capability.CheckoutDetails, []models.CheckoutDetail{}, func(ctx context.Context) ([]models.CheckoutDetail, error) {
			return s.identity.ListCheckoutDetails(ctx, userID)
		})
	}

	p.wait()
	return res
}

func deviceIDs(devices []models.Device) []int64 {
	ids := make([]int64, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.ID)
	}
	return ids
}

// attachDeviceIPs returns copies of devices with their IP history filled in.
func attachDeviceIPs(devices []models.Device, history []models.DeviceIP) []models.Device {
	byDevice := make(map[int64][]models.DeviceIP, len(devices))
	for _, h := range history {
		byDevice[h.DeviceID] = append(byDevice[h.DeviceID], h)
	}
	out := make([]models.Device, 0, len(devices))
	for _, d := range devices {
		d.IPs = byDevice[d.ID]
		if d.IPs == nil {
			d.IPs = []models.DeviceIP{}
		}
		out = append(out, d)
	}
	return out
}
