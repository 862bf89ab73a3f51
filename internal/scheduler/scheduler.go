package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/contractflow/internal/clock"
	"github.com/railzwaylabs/contractflow/internal/commerce"
	"github.com/railzwaylabs/contractflow/internal/config"
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
	"github.com/railzwaylabs/contractflow/internal/interval"
	scheduledomain "github.com/railzwaylabs/contractflow/internal/schedule/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrRunInProgress is returned when another scheduler run already holds the
// store's run lock. The triggering caller treats it as a no-op, not a failure.
var ErrRunInProgress = errors.New("a scheduler run is already in progress for this store")

const runLockPrefix = "contractflow:scheduler:run:"

// FailedContract reports one contract rejected during validation.
type FailedContract struct {
	ContractID snowflake.ID `json:"contract_id"`
	Reason     string       `json:"reason"`
}

// Summary is the synchronous result of a scheduling pass: Phase 1 only.
// Phase 2 outcomes land in the schedule log, not here.
type Summary struct {
	Total     int              `json:"total"`
	Scheduled int              `json:"scheduled"`
	Skipped   int              `json:"skipped"`
	Failed    []FailedContract `json:"failed"`
}

type Scheduler struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	cfg   config.SchedulerConfig
	redis *redis.Client

	calc      *interval.Calculator
	contracts contractdomain.Repository
	schedules scheduledomain.Repository
	orders    commerce.OrderService

	wg sync.WaitGroup
}

type Param struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cfg   config.Config
	Redis *redis.Client

	Calc      *interval.Calculator
	Contracts contractdomain.Repository
	Schedules scheduledomain.Repository
	Orders    commerce.OrderService
}

func New(p Param) *Scheduler {
	cfg := p.Cfg.Scheduler
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler"),
		genID:     p.GenID,
		clock:     p.Clock,
		cfg:       cfg,
		redis:     p.Redis,
		calc:      p.Calc,
		contracts: p.Contracts,
		schedules: p.Schedules,
		orders:    p.Orders,
	}
}

// Run executes one scheduling pass for a store. Phase 1 (discovery and
// validation) completes before Run returns; Phase 2 (order creation and date
// advancement) is detached and reports only through the schedule log.
func (s *Scheduler) Run(ctx context.Context, storeID string) (Summary, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return Summary{}, contractdomain.ErrInvalidStore
	}

	lockKey := runLockPrefix + storeID
	acquired, err := s.redis.SetNX(ctx, lockKey, time.Now().UTC().Format(time.RFC3339), s.cfg.LockTTL).Result()
	if err != nil {
		return Summary{}, err
	}
	if !acquired {
		return Summary{}, ErrRunInProgress
	}

	now := interval.DateOnly(s.clock.Now(ctx))
	runsTotal.WithLabelValues(storeID).Inc()

	eligible, err := s.schedules.FindEligible(ctx, s.db, storeID, now)
	if err != nil {
		s.releaseLock(lockKey)
		return Summary{}, err
	}

	summary := Summary{Total: len(eligible), Failed: []FailedContract{}}
	validated := make([]*scheduledomain.Command, 0, len(eligible))

	for i := range eligible {
		cmd := scheduledomain.NewCommand(eligible[i])
		s.validateCommand(ctx, cmd, now)

		switch cmd.Status {
		case scheduledomain.CommandValidated:
			validated = append(validated, cmd)
		case scheduledomain.CommandSkipped:
			summary.Skipped++
		default:
			summary.Failed = append(summary.Failed, FailedContract{
				ContractID: cmd.Contract.ID,
				Reason:     cmd.Reason,
			})
		}
	}
	summary.Scheduled = len(validated)

	s.log.Info("scheduling pass validated",
		zap.String("store_id", storeID),
		zap.Int("total", summary.Total),
		zap.Int("scheduled", summary.Scheduled),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.releaseLock(lockKey)

		processCtx, cancel := context.WithTimeout(detachedContext(ctx), 10*time.Minute)
		defer cancel()
		s.process(processCtx, validated, now)
	}()

	return summary, nil
}

// Wait blocks until all detached processing from previous Run calls has
// finished. Tests use it instead of sleeping.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// validateCommand runs the synchronous Phase 1 checks for one contract,
// writing a log entry for every non-validated outcome before returning.
func (s *Scheduler) validateCommand(ctx context.Context, cmd *scheduledomain.Command, now time.Time) {
	contract := &cmd.Contract

	// The eligibility filter races against the wall clock; a contract whose
	// end date has passed by now is closed out rather than billed.
	if interval.DateOnly(contract.EndDate).Before(now) {
		if err := s.schedules.MarkCompleted(ctx, s.db, contract, now); err != nil {
			cmd.MarkFailed(err.Error())
			s.appendLog(ctx, contract, scheduledomain.LogStatusFailed, err.Error())
			return
		}
		cmd.MarkSkipped("contract period ended")
		s.appendLog(ctx, contract, scheduledomain.LogStatusSkipped, "contract period ended")
		return
	}

	if contract.IntervalValue <= 0 {
		s.failCommand(ctx, cmd, "missing interval value")
		return
	}
	if _, err := interval.ParseUnit(contract.IntervalUnit); err != nil {
		s.failCommand(ctx, cmd, "invalid interval unit: "+contract.IntervalUnit)
		return
	}
	if strings.TrimSpace(contract.CurrencyCode) == "" {
		s.failCommand(ctx, cmd, "missing currency code")
		return
	}
	if contract.OrderTotal <= 0 {
		s.failCommand(ctx, cmd, "missing order total")
		return
	}

	lines, err := s.contracts.ListLines(ctx, s.db, contract.StoreID, contract.ID)
	if err != nil {
		s.failCommand(ctx, cmd, "loading contract lines: "+err.Error())
		return
	}
	if len(lines) == 0 {
		s.failCommand(ctx, cmd, "contract has no lines")
		return
	}

	cmd.Lines = lines
	cmd.MarkValidated()
}

func (s *Scheduler) failCommand(ctx context.Context, cmd *scheduledomain.Command, reason string) {
	cmd.MarkFailed(reason)
	commandsTotal.WithLabelValues("failed").Inc()
	s.appendLog(ctx, &cmd.Contract, scheduledomain.LogStatusFailed, reason)
}

// process is Phase 2: validated commands run in batches of at most
// cfg.BatchSize concurrent items, each batch awaited before the next starts.
func (s *Scheduler) process(ctx context.Context, commands []*scheduledomain.Command, now time.Time) {
	for start := 0; start < len(commands); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(commands) {
			end = len(commands)
		}

		var batch sync.WaitGroup
		for _, cmd := range commands[start:end] {
			batch.Add(1)
			go func(cmd *scheduledomain.Command) {
				defer batch.Done()
				s.processCommand(ctx, cmd, now)
			}(cmd)
		}
		batch.Wait()
	}
}

// processCommand bills a single contract. Every failure path is contained
// here: one contract can never abort its batch or its siblings.
func (s *Scheduler) processCommand(ctx context.Context, cmd *scheduledomain.Command, now time.Time) {
	contract := &cmd.Contract

	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("panic during processing: %v", r)
			cmd.MarkFailed(reason)
			commandsTotal.WithLabelValues("failed").Inc()
			s.appendLog(ctx, contract, scheduledomain.LogStatusFailed, reason)
		}
	}()

	order, err := s.orders.CreateOrder(ctx, contract, cmd.Lines)
	if err != nil {
		cmd.MarkFailed(err.Error())
		commandsTotal.WithLabelValues("failed").Inc()
		s.appendLog(ctx, contract, scheduledomain.LogStatusFailed, "order creation failed: "+err.Error())
		return
	}

	// Strictly after now: the billed date usually sits on the cadence grid,
	// and re-deriving it would leave the contract due forever.
	unit, _ := interval.ParseUnit(contract.IntervalUnit)
	next := s.calc.NextBillingDateAfter(
		contract.StartDate,
		contract.IntervalValue, unit,
		contract.DeliveryAnchor, now,
	)

	claimed, err := s.schedules.ClaimNextOrderDate(ctx, s.db, contract, next, s.clock.Now(ctx))
	if err != nil {
		cmd.MarkFailed(err.Error())
		commandsTotal.WithLabelValues("failed").Inc()
		s.appendLog(ctx, contract, scheduledomain.LogStatusFailed, "advancing next order date: "+err.Error())
		return
	}
	if !claimed {
		cmd.MarkSkipped("contract already advanced by a concurrent run")
		commandsTotal.WithLabelValues("skipped").Inc()
		s.appendLog(ctx, contract, scheduledomain.LogStatusSkipped, "contract already advanced by a concurrent run")
		return
	}

	cmd.MarkCompleted()
	commandsTotal.WithLabelValues("completed").Inc()
	s.appendLog(ctx, contract, scheduledomain.LogStatusSuccess,
		fmt.Sprintf("order %s created, next order on %s", order.OrderNumber, next.Format(time.DateOnly)),
	)
}

func (s *Scheduler) appendLog(ctx context.Context, contract *contractdomain.Contract, status scheduledomain.LogStatus, message string) {
	entry := &scheduledomain.ScheduleLogEntry{
		ID:         s.genID.Generate(),
		StoreID:    contract.StoreID,
		ContractID: contract.ID,
		Status:     status,
		CreatedAt:  s.clock.Now(ctx),
	}
	if message != "" {
		entry.Message = &message
	}
	if err := s.schedules.AppendLog(ctx, s.db, entry); err != nil {
		s.log.Error("failed to append schedule log entry",
			zap.Error(err),
			zap.Int64("contract_id", int64(contract.ID)),
		)
	}
}

func (s *Scheduler) releaseLock(key string) {
	if err := s.redis.Del(context.Background(), key).Err(); err != nil {
		s.log.Warn("failed to release scheduler run lock", zap.Error(err), zap.String("key", key))
	}
}

// detachedContext severs cancellation from the triggering request while
// preserving a simulated clock, so async processing under test stays
// deterministic.
func detachedContext(ctx context.Context) context.Context {
	detached := context.Background()
	if t, ok := clock.SimulatedTimeFromContext(ctx); ok {
		detached = clock.WithSimulatedTime(detached, t)
	}
	return detached
}
