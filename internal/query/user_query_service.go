package query

import (
	"context"
	"fmt"
	"time"

	"github.com/gamepanel/user-service/internal/capability"
	"github.com/gamepanel/user-service/internal/keys"
	"github.com/gamepanel/user-service/internal/repository"
	"github.com/gamepanel/user-service/internal/store"
	"github.com/gamepanel/user-service/shared/cqrs"
	"github.com/gamepanel/user-service/shared/events"
	"github.com/gamepanel/user-service/shared/logger"
	"github.com/gamepanel/user-service/shared/metrics"
	"github.com/gamepanel/user-service/shared/models"
)

// ErrUserNotFound is returned when the primary user id has no profile.
var ErrUserNotFound = repository.ErrUserNotFound

const auditTimeout = 2 * time.Second

// Aggregation outcomes.
const (
	outcomeComplete        = "complete"
	outcomePartial         = "partial"
	outcomeNotFound        = "not_found"
	outcomeInvalidPlan     = "invalid_plan"
	outcomeKeysUnavailable = "keys_unavailable"
	outcomeCanceled        = "canceled"
)

// IdentityReader is the identity-store read side used by the aggregator.
type IdentityReader interface {
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	ListActivity(ctx context.Context, userID int64) ([]models.ActivityEntry, error)
	ListDevices(ctx context.Context, userID int64) ([]models.Device, error)
	ListDeviceIPs(ctx context.Context, deviceIDs []int64) ([]models.DeviceIP, error)
	ListLoginLogs(ctx context.Context, userID int64) ([]models.LoginLog, error)
	ListLoginTokens(ctx context.Context, userID int64) ([]models.LoginToken, error)
	ListPayments(ctx context.Context, userID int64) ([]models.Payment, error)
	ListCheckoutDetails(ctx context.Context, userID int64) ([]models.CheckoutDetail, error)
}

// GameplayReader is the gameplay-store read side used by the aggregator.
type GameplayReader interface {
	ListStats(ctx context.Context, steamIDs []string) ([]models.PlayerStat, error)
	ListRecords(ctx context.Context, steamIDs []string) ([]models.PlayerRecord, error)
	ListStageTimes(ctx context.Context, steamIDs []string) ([]models.StageTime, error)
	ListAdmins(ctx context.Context, steamIDs []string) ([]models.Admin, error)
	ListBansByTarget(ctx context.Context, steamIDs []string) ([]models.Ban, error)
	ListBansByAdmin(ctx context.Context, steamIDs []string) ([]models.Ban, error)
	ListBansByIP(ctx context.Context, ips []string) ([]models.Ban, error)
	ListMutesByTarget(ctx context.Context, steamIDs []string) ([]models.Mute, error)
	ListMutesByAdmin(ctx context.Context, steamIDs []string) ([]models.Mute, error)
	ListConnections(ctx context.Context, steamIDs []string) ([]models.Connection, error)
	ListServers(ctx context.Context, ids []int64) ([]models.Server, error)
}

// Publisher emits audit events. A nil Publisher disables auditing.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// UserQueryService aggregates one user's records from the identity and
// gameplay stores into a single document.
type UserQueryService struct {
	identity  IdentityReader
	gameplay  GameplayReader
	graph     capability.Graph
	plan      capability.Plan
	publisher Publisher
	log       *logger.Logger
}

// NewUserQueryService builds the aggregator around a plan that has already
// been validated against graph.
func NewUserQueryService(identity IdentityReader, gameplay GameplayReader, graph capability.Graph, plan capability.Plan, publisher Publisher, log *logger.Logger) *UserQueryService {
	return &UserQueryService{
		identity:  identity,
		gameplay:  gameplay,
		graph:     graph,
		plan:      plan,
		publisher: publisher,
		log:       log,
	}
}

// GetUser runs the two-phase aggregation for q.UserID.
//
// It fails with a *capability.DependencyError before touching either store
// when the requested capability set is inconsistent, with ErrUserNotFound
// when there is no profile, and with keys.ErrKeysUnavailable when gameplay
// data was requested for a user without Steam identifiers. Individual
// sub-query failures never fail the request; their groups hold empty lists.
func (s *UserQueryService) GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.UserDocument, error) {
	plan := s.plan
	if q.Capabilities != nil {
		p, err := capability.Validate(capability.SetOf(q.Capabilities), s.graph)
		if err != nil {
			metrics.RecordAggregation(outcomeInvalidPlan)
			return nil, err
		}
		plan = p
	}

	log := s.log.With("userId", q.UserID)
	r := &report{}

	id := s.runIdentityPhase(newPhase(ctx, store.Identity, log, r), plan, q.UserID)
	if err := ctx.Err(); err != nil {
		metrics.RecordAggregation(outcomeCanceled)
		return nil, fmt.Errorf("identity phase: %w", err)
	}
	if id.profile.notFound {
		metrics.RecordAggregation(outcomeNotFound)
		return nil, ErrUserNotFound
	}

	k, err := keys.Resolve(q.UserID, keys.Sources{
		Profile:   id.profile.profile,
		Devices:   id.devices,
		LoginLogs: id.loginLogs,
	}, plan.NeedsGameplay())
	if err != nil {
		metrics.RecordAggregation(outcomeKeysUnavailable)
		log.Warn("gameplay data requested without steam identifiers", "capabilities", plan.List())
		return nil, err
	}

	gp := &gameplayResults{}
	if plan.NeedsGameplay() {
		gp = s.runGameplayPhase(newPhase(ctx, store.Gameplay, log, r), plan, k)
		if err := ctx.Err(); err != nil {
			metrics.RecordAggregation(outcomeCanceled)
			return nil, fmt.Errorf("gameplay phase: %w", err)
		}
	}

	doc := assemble(plan, k, id, gp)

	failed := r.capabilities()
	if len(failed) > 0 {
		metrics.RecordAggregation(outcomePartial)
		log.Info("user aggregated with failed sub-queries", "failedCapabilities", failed)
	} else {
		metrics.RecordAggregation(outcomeComplete)
		log.Debug("user aggregated", "steamIds", len(k.SteamIDs), "ips", len(k.IPs))
	}

	s.audit(ctx, q, plan, failed)
	return doc, nil
}

func (s *UserQueryService) audit(ctx context.Context, q cqrs.GetUserQuery, plan capability.Plan, failed []string) {
	if s.publisher == nil {
		return
	}
	caps := make([]string, 0, len(plan.List()))
	for _, c := range plan.List() {
		caps = append(caps, string(c))
	}

	// The lookup already succeeded; a client disconnect must not drop the record.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	err := s.publisher.Publish(pubCtx, events.UserLookedUp, events.UserLookedUpEvent{
		UserID:             q.UserID,
		RequestedBy:        q.RequestedBy,
		RequestedByRole:    q.RequestedByRole,
		Capabilities:       caps,
		FailedCapabilities: failed,
	})
	if err != nil {
		s.log.Warn("failed to publish lookup event", "userId", q.UserID, "error", err)
	}
}
