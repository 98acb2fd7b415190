package services

import (
	"context"
	"time"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"

	"go.uber.org/zap"
)

// Observer receives domain events, typically to feed metrics.
type Observer interface {
	DocumentChanged(action string, category models.Category)
	ReferenceAllocated()
}

type nopObserver struct{}

func (nopObserver) DocumentChanged(string, models.Category) {}
func (nopObserver) ReferenceAllocated()                     {}

type Options struct {
	// Now replaces the wall clock; nil means time.Now.
	Now func() time.Time
	// EnforceStatusWorkflow restricts status changes to the transitions in
	// CanTransition.
	EnforceStatusWorkflow bool
	// RecentActivities caps the activity list in progress and profile views.
	RecentActivities int
	Observer         Observer
	Logger           *zap.Logger
}

// ArchiveService implements document filing, lookup and reporting on top
// of a Store.
type ArchiveService struct {
	store    repositories.Store
	audit    *repositories.AuditRepository
	now      func() time.Time
	enforce  bool
	recent   int
	observer Observer
	log      *zap.Logger
}

func NewArchiveService(store repositories.Store, audit *repositories.AuditRepository, opts Options) *ArchiveService {
	s := &ArchiveService{
		store:    store,
		audit:    audit,
		now:      opts.Now,
		enforce:  opts.EnforceStatusWorkflow,
		recent:   opts.RecentActivities,
		observer: opts.Observer,
		log:      opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.recent <= 0 {
		s.recent = 5
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.audit == nil {
		s.audit = repositories.NewAuditRepository(store)
	}
	return s
}

func (s *ArchiveService) Store() repositories.Store {
	return s.store
}

// record appends an audit entry. Failures are logged, not returned.
func (s *ArchiveService) record(ctx context.Context, actor repositories.Actor, action, resourceType, resourceID string, meta map[string]any) {
	if err := s.audit.Log(ctx, actor, action, resourceType, resourceID, meta); err != nil {
		s.log.Warn("audit append failed",
			zap.String("action", action),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
	}
}
