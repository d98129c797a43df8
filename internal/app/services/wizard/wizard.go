// Package wizard implements the three-step entity creation flow: profile,
// configuration and invites. A Session holds one user's wizard state on top
// of their persisted draft; transitions persist the draft, everything else
// mutates in memory until the next save.
package wizard

import (
	"context"
	"errors"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/domain/provider"
	"github.com/FolioWorks/entity_layer/internal/app/services/drafts"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

var (
	// ErrProfileIncomplete blocks the 1→2 transition until name and brief
	// are filled in.
	ErrProfileIncomplete = errors.New("name and brief are required")
	// ErrNotReviewed blocks the 2→3 transition until the configuration
	// list has been reviewed.
	ErrNotReviewed = errors.New("configuration has not been reviewed")
	// ErrContactsPermission is returned when device contacts were requested
	// without a permission grant.
	ErrContactsPermission = errors.New("contacts permission denied")
	// ErrNotAtInviteStep guards terminal actions that only exist on step 3.
	ErrNotAtInviteStep = errors.New("not at the invite step")
	// ErrInvitesUndecided blocks completion while contacts are selected but
	// the user has neither confirmed sending invites nor deferred them.
	ErrInvitesUndecided = errors.New("confirm or skip invites before completing")
)

// ProviderLister fetches the vendor catalog for one category.
type ProviderLister interface {
	ListByCategory(ctx context.Context, key entity.CategoryKey) ([]provider.Provider, error)
}

// Submitter finalizes a draft into a created entity.
type Submitter interface {
	Submit(ctx context.Context, userID string, d draft.Draft) (entity.Entity, error)
}

// InviteSender issues invites for a created entity and renders the deep-link
// message offered to the user.
type InviteSender interface {
	Message(entityName string) string
	Send(ctx context.Context, inviterID, entityID, entityName, message string, contacts []invite.ContactCandidate) ([]invite.Invite, error)
}

// CompletionPersister persists a category completion flag on an existing
// entity. Used only when a session edits a created entity.
type CompletionPersister interface {
	SetItemCompleted(ctx context.Context, entityID string, key entity.CategoryKey, completed bool) error
}

// Config wires a Service.
type Config struct {
	Drafts    *drafts.Service
	Providers ProviderLister
	Roster    storage.RosterStore
	Invites   InviteSender
	Submitter Submitter
	Persister CompletionPersister
	Logger    *logger.Logger
}

// Service opens wizard sessions.
type Service struct {
	cfg Config
	log *logger.Logger
}

// New constructs a wizard service.
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("wizard")
	}
	return &Service{cfg: cfg, log: log}
}

// Open loads the user's draft and returns a session positioned on it. A
// missing or unreadable draft starts fresh at the profile step.
func (s *Service) Open(ctx context.Context, userID string) (*Session, error) {
	d, err := s.cfg.Drafts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Session{
		userID:        userID,
		d:             d,
		drafts:        s.cfg.Drafts,
		providers:     s.cfg.Providers,
		roster:        s.cfg.Roster,
		invites:       s.cfg.Invites,
		submitter:     s.cfg.Submitter,
		persister:     s.cfg.Persister,
		log:           s.log.WithField("user_id", userID),
		expanded:      map[entity.CategoryKey]bool{},
		providerCache: map[entity.CategoryKey][]provider.Provider{},
		fetchInFlight: map[entity.CategoryKey]bool{},
	}, nil
}
