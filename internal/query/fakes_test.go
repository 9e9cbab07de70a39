package query

import (
	"context"
	"sync"

	"github.com/gamepanel/user-service/internal/repository"
	"github.com/gamepanel/user-service/shared/models"
)

// spy counts calls per method and returns a configured error for any of them.
type spy struct {
	mu    sync.Mutex
	calls map[string]int
	errs  map[string]error
}

func (s *spy) hit(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
	return s.errs[method]
}

func (s *spy) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *spy) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

type fakeIdentity struct {
	spy
	profile     *models.Profile
	activity    []models.ActivityEntry
	devices     []models.Device
	deviceIPs   []models.DeviceIP
	loginLogs   []models.LoginLog
	loginTokens []models.LoginToken
	payments    []models.Payment
	checkout    []models.CheckoutDetail

	// blockOn names a method that waits for its context to end instead of
	// returning. started is closed once that method is running.
	blockOn string
	started chan struct{}
}

func (f *fakeIdentity) stall(ctx context.Context, method string) error {
	if f.blockOn != method {
		return nil
	}
	if f.started != nil {
		close(f.started)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeIdentity) GetProfile(_ context.Context, _ int64) (*models.Profile, error) {
	if err := f.hit("GetProfile"); err != nil {
		return nil, err
	}
	if f.profile == nil {
		return nil, repository.ErrUserNotFound
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeIdentity) ListActivity(ctx context.Context, _ int64) ([]models.ActivityEntry, error) {
	if err := f.hit("ListActivity"); err != nil {
		return nil, err
	}
	if err := f.stall(ctx, "ListActivity"); err != nil {
		return nil, err
	}
	return f.activity, nil
}

func (f *fakeIdentity) ListDevices(_ context.Context, _ int64) ([]models.Device, error) {
	return f.devices, f.hit("ListDevices")
}

func (f *fakeIdentity) ListDeviceIPs(_ context.Context, _ []int64) ([]models.DeviceIP, error) {
	return f.deviceIPs, f.hit("ListDeviceIPs")
}

func (f *fakeIdentity) ListLoginLogs(_ context.Context, _ int64) ([]models.LoginLog, error) {
	return f.loginLogs, f.hit("ListLoginLogs")
}

func (f *fakeIdentity) ListLoginTokens(_ context.Context, _ int64) ([]models.LoginToken, error) {
	return f.loginTokens, f.hit("ListLoginTokens")
}

func (f *fakeIdentity) ListPayments(_ context.Context, _ int64) ([]models.Payment, error) {
	return f.payments, f.hit("ListPayments")
}

func (f *fakeIdentity) ListCheckoutDetails(_ context.Context, _ int64) ([]models.CheckoutDetail, error) {
	return f.checkout, f.hit("ListCheckoutDetails")
}

// fakeGameplay records how many identity calls had been made when its first
// query arrived, which lets tests check the phase barrier.
type fakeGameplay struct {
	spy
	identity *fakeIdentity

	barrierMu        sync.Mutex
	identityAtFirst  int
	sawFirstGameplay bool

	stats        []models.PlayerStat
	records      []models.PlayerRecord
	stageTimes   []models.StageTime
	admins       []models.Admin
	bansByTarget []models.Ban
	bansByAdmin  []models.Ban
	bansByIP     []models.Ban
	mutesTarget  []models.Mute
	mutesAdmin   []models.Mute
	connections  []models.Connection
	servers      []models.Server

	serverLookups [][]int64
	steamKeys     []string
	ipKeys        []string
}

func (f *fakeGameplay) enter(method string) error {
	f.barrierMu.Lock()
	if !f.sawFirstGameplay && f.identity != nil {
		f.sawFirstGameplay = true
		f.identityAtFirst = f.identity.total()
	}
	f.barrierMu.Unlock()
	return f.hit(method)
}

func (f *fakeGameplay) keyed(method string, steamIDs []string) error {
	f.barrierMu.Lock()
	f.steamKeys = steamIDs
	f.barrierMu.Unlock()
	return f.enter(method)
}

func (f *fakeGameplay) ListStats(_ context.Context, ids []string) ([]models.PlayerStat, error) {
	return f.stats, f.keyed("ListStats", ids)
}

func (f *fakeGameplay) ListRecords(_ context.Context, ids []string) ([]models.PlayerRecord, error) {
	return f.records, f.keyed("ListRecords", ids)
}

func (f *fakeGameplay) ListStageTimes(_ context.Context, ids []string) ([]models.StageTime, error) {
	return f.stageTimes, f.keyed("ListStageTimes", ids)
}

func (f *fakeGameplay) ListAdmins(_ context.Context, ids []string) ([]models.Admin, error) {
	return f.admins, f.keyed("ListAdmins", ids)
}

func (f *fakeGameplay) ListBansByTarget(_ context.Context, ids []string) ([]models.Ban, error) {
	return f.bansByTarget, f.keyed("ListBansByTarget", ids)
}

func (f *fakeGameplay) ListBansByAdmin(_ context.Context, ids []string) ([]models.Ban, error) {
	return f.bansByAdmin, f.keyed("ListBansByAdmin", ids)
}

func (f *fakeGameplay) ListBansByIP(_ context.Context, ips []string) ([]models.Ban, error) {
	f.barrierMu.Lock()
	f.ipKeys = ips
	f.barrierMu.Unlock()
	return f.bansByIP, f.enter("ListBansByIP")
}

func (f *fakeGameplay) ListMutesByTarget(_ context.Context, ids []string) ([]models.Mute, error) {
	return f.mutesTarget, f.keyed("ListMutesByTarget", ids)
}

func (f *fakeGameplay) ListMutesByAdmin(_ context.Context, ids []string) ([]models.Mute, error) {
	return f.mutesAdmin, f.keyed("ListMutesByAdmin", ids)
}

func (f *fakeGameplay) ListConnections(_ context.Context, ids []string) ([]models.Connection, error) {
	return f.connections, f.keyed("ListConnections", ids)
}

func (f *fakeGameplay) ListServers(_ context.Context, ids []int64) ([]models.Server, error) {
	if err := f.enter("ListServers"); err != nil {
		return nil, err
	}
	f.barrierMu.Lock()
	f.serverLookups = append(f.serverLookups, ids)
	f.barrierMu.Unlock()

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Server
	for _, s := range f.servers {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}
