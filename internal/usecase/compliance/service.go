package compliance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jshchssr1023/Railsync-sub003/internal/bootstrap/logging"
	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500

	defaultRecalcChunkSize  = 500
	defaultHistoryQueueSize = 1024
	defaultStatsTTL         = 30 * time.Second

	systemActor   = "system"
	statsCacheKey = "compliance:fleet_stats"
)

type Options struct {
	RecalcChunkSize  int
	HistoryQueueSize int
	StatsTTL         time.Duration
	Clock            func() time.Time
}

type Service struct {
	repo      ports.ComplianceRepository
	uow       ports.UnitOfWork
	cache     ports.Cache
	publisher ports.EventPublisher
	history   *historyDispatcher

	now             func() time.Time
	recalcChunkSize int
	statsTTL        time.Duration
}

// NewService wires compliance usecases. cache and publisher may be nil.
// The service owns a background history writer; call Close to drain it.
func NewService(repo ports.ComplianceRepository, uow ports.UnitOfWork, cache ports.Cache, publisher ports.EventPublisher, opts Options) *Service {
	if opts.RecalcChunkSize <= 0 {
		opts.RecalcChunkSize = defaultRecalcChunkSize
	}
	if opts.HistoryQueueSize <= 0 {
		opts.HistoryQueueSize = defaultHistoryQueueSize
	}
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = defaultStatsTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Service{
		repo:            repo,
		uow:             uow,
		cache:           cache,
		publisher:       publisher,
		history:         newHistoryDispatcher(repo, opts.HistoryQueueSize),
		now:             opts.Clock,
		recalcChunkSize: opts.RecalcChunkSize,
		statsTTL:        opts.StatsTTL,
	}
}

// Close stops accepting background history events and waits for queued ones.
func (s *Service) Close(ctx context.Context) error {
	return s.history.Close(ctx)
}

type CreateQualificationInput struct {
	CarID               string
	QualificationTypeID uint64
	TypeCode            string
	IntervalMonths      *int
	LastCompletedDate   *string
	NextDueDate         *string
	IsExempt            bool
	ExemptReason        string
	Notes               string
}

type CompleteQualificationInput struct {
	CompletedDate      string
	CompletedBy        string
	CompletionShopCode string
	CertificateNumber  string
	Notes              *string
	// ExpectedUpdatedAt, when set, rejects the completion if the record
	// changed since the caller read it.
	ExpectedUpdatedAt *time.Time
}

type ListQualificationsResult struct {
	Qualifications []domain.Qualification
	Total          int64
}

type ListAlertsResult struct {
	Alerts []domain.Alert
	Total  int64
}

type BulkUpdateResult struct {
	Updated int64
	BatchID string
}

type RecalculateResult struct {
	Updated   int
	Scanned   int
	Conflicts int
	Failed    int
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("compliance repository is required")
	}
	if s.uow == nil {
		return errors.New("compliance unit of work is required")
	}
	return nil
}

func (s *Service) logCtx(ctx context.Context, operation string) context.Context {
	return logging.WithAttrs(ctx,
		slog.String("component", "usecase.compliance"),
		slog.String("operation", operation),
	)
}

func normalizeActor(actorID string) string {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return systemActor
	}
	return actorID
}

func normalizePage(page ports.Page) ports.Page {
	if page.Limit <= 0 {
		page.Limit = DefaultPageLimit
	}
	if page.Limit > MaxPageLimit {
		page.Limit = MaxPageLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return page
}

func (s *Service) resolveNow(now time.Time) time.Time {
	if now.IsZero() {
		return s.now()
	}
	return now
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		logging.Warn(ctx, "invalidate stats cache failed", slog.Any("err", errs.Loggable(err)))
	}
}
