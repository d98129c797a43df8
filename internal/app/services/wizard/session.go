package wizard

import (
	"context"
	"sync"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/domain/provider"
	"github.com/FolioWorks/entity_layer/internal/app/services/drafts"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Session is one user's live wizard state. The draft is the persisted part;
// expansion flags, provider caches, the review flag and the candidate list
// are transient and rebuilt on every open.
type Session struct {
	mu     sync.Mutex
	userID string
	d      draft.Draft

	drafts    *drafts.Service
	providers ProviderLister
	roster    storage.RosterStore
	invites   InviteSender
	submitter Submitter
	persister CompletionPersister
	log       *logger.Logger

	reviewed      bool
	expanded      map[entity.CategoryKey]bool
	providerCache map[entity.CategoryKey][]provider.Provider
	fetchInFlight map[entity.CategoryKey]bool

	candidates       []invite.ContactCandidate
	invitesConfirmed bool
	invitesDeferred  bool

	// editEntityID is set when the session edits an already-created entity;
	// completion toggles then persist immediately instead of waiting for
	// submission.
	editEntityID string
}

// Draft returns a snapshot of the persisted wizard state.
func (s *Session) Draft() draft.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d
}

// Step returns the current wizard step.
func (s *Session) Step() draft.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Step
}

// SetProfile replaces the step-1 fields.
func (s *Session) SetProfile(p draft.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.Profile = p
}

// MarkReviewed records that the user has seen the full configuration list,
// unlocking the 2→3 transition.
func (s *Session) MarkReviewed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviewed = true
}

// Advance moves one step forward, persisting the draft on success. The 1→2
// transition requires a complete profile; 2→3 requires the configuration
// list to have been reviewed. Data completeness is never required.
func (s *Session) Advance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.d.Step {
	case draft.StepProfile:
		if !s.d.Profile.Complete() {
			return ErrProfileIncomplete
		}
		s.d.Step = draft.StepConfiguration
	case draft.StepConfiguration:
		if !s.reviewed {
			return ErrNotReviewed
		}
		s.d.Step = draft.StepInvite
	default:
		return nil
	}
	s.resetTransientLocked()
	return s.drafts.Save(ctx, s.userID, s.d)
}

// Back moves one step backward. Back navigation never re-validates.
func (s *Session) Back(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.d.Step <= draft.StepProfile {
		return nil
	}
	s.d.Step--
	s.resetTransientLocked()
	return s.drafts.Save(ctx, s.userID, s.d)
}

// Save persists the draft as it stands, without a transition.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts.Save(ctx, s.userID, s.d)
}

// resetTransientLocked clears the per-step UI flags on every step entry.
// Provider caches survive so a revisit does not refetch.
func (s *Session) resetTransientLocked() {
	s.reviewed = false
	s.expanded = map[entity.CategoryKey]bool{}
}

// BindEntity switches the session into edit mode for an existing entity.
func (s *Session) BindEntity(entityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editEntityID = entityID
}

// ToggleExpand flips a category's expansion. The first expansion kicks off a
// background provider fetch for that key; a per-key in-flight flag keeps an
// expand/collapse/expand burst from issuing duplicates. A failed fetch
// leaves the cache empty so re-expanding retries.
func (s *Session) ToggleExpand(ctx context.Context, key entity.CategoryKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expanded[key] = !s.expanded[key]
	if s.expanded[key] && s.providerCache[key] == nil && !s.fetchInFlight[key] {
		s.fetchInFlight[key] = true
		go s.fetchProviders(context.WithoutCancel(ctx), key)
	}
	return s.expanded[key]
}

func (s *Session) fetchProviders(ctx context.Context, key entity.CategoryKey) {
	list, err := s.providers.ListByCategory(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchInFlight[key] = false
	if err != nil {
		s.log.WithError(err).WithField("category", key).Warn("provider fetch failed")
		return
	}
	if list == nil {
		list = []provider.Provider{}
	}
	s.providerCache[key] = list
}

// Providers returns the fetched vendor list for a category. nil means no
// successful fetch has happened yet.
func (s *Session) Providers(key entity.CategoryKey) []provider.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providerCache[key]
}

// Expanded reports a category's expansion state.
func (s *Session) Expanded(key entity.CategoryKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded[key]
}

// SelectProvider records the vendor choice for a category, overwriting any
// prior selection. Completion state is untouched.
func (s *Session) SelectProvider(key entity.CategoryKey, providerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.d.Configuration.Data[key]
	cfg.ProviderID = providerID
	s.d.Configuration.Data[key] = cfg
}

// SetNotes updates a category's free-text notes.
func (s *Session) SetNotes(key entity.CategoryKey, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.d.Configuration.Data[key]
	cfg.Notes = text
	s.d.Configuration.Data[key] = cfg
}

// ToggleCompleted flips a category's done flag. During creation the flip is
// draft-local; in edit mode it is applied optimistically and reverted if
// remote persistence fails.
func (s *Session) ToggleCompleted(ctx context.Context, key entity.CategoryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := !s.d.Configuration.Completed(key)
	s.d.Configuration.SetCompleted(key, done)

	if s.editEntityID == "" || s.persister == nil {
		return nil
	}
	if err := s.persister.SetItemCompleted(ctx, s.editEntityID, key, done); err != nil {
		s.d.Configuration.SetCompleted(key, !done)
		s.log.WithError(err).WithField("category", key).Warn("completion persistence failed, reverted")
		return err
	}
	return nil
}
