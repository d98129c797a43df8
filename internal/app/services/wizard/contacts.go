package wizard

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
)

// UseDeviceContacts loads the candidate list from the device address book.
// granted reflects the OS permission result; a denial leaves the current
// source untouched.
func (s *Session) UseDeviceContacts(candidates []invite.ContactCandidate, granted bool) error {
	if !granted {
		return ErrContactsPermission
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append([]invite.ContactCandidate(nil), candidates...)
	return nil
}

// UseRoster loads the candidate list from the internal roster.
func (s *Session) UseRoster(ctx context.Context) error {
	list, err := s.roster.ListRoster(ctx, s.userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = list
	return nil
}

// Candidates returns the loaded contacts sorted alphabetically by name
// (locale-aware, ties keep input order) and filtered by a case-insensitive
// substring match on name, phone or email. An empty query returns the full
// sorted list.
func (s *Session) Candidates(query string) []invite.ContactCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := append([]invite.ContactCandidate(nil), s.candidates...)
	cl := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		return cl.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return sorted
	}
	filtered := sorted[:0]
	for _, c := range sorted {
		if strings.Contains(strings.ToLower(c.Name), query) ||
			strings.Contains(strings.ToLower(c.Phone), query) ||
			strings.Contains(strings.ToLower(c.Email), query) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// ToggleSelect adds or removes a candidate from the selection by ID. The
// invite message is generated once, when the selection first becomes
// non-empty; later selection changes leave it alone so user edits survive.
func (s *Session) ToggleSelect(c invite.ContactCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.d.Invite.SelectedContacts
	for i, cur := range sel {
		if cur.ID == c.ID {
			s.d.Invite.SelectedContacts = append(sel[:i], sel[i+1:]...)
			return
		}
	}
	wasEmpty := len(sel) == 0
	s.d.Invite.SelectedContacts = append(sel, c)
	if wasEmpty && s.d.Invite.Message == "" && s.invites != nil {
		s.d.Invite.Message = s.invites.Message(s.d.Profile.Name)
	}
}

// Selected returns the current selection set.
func (s *Session) Selected() []invite.ContactCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]invite.ContactCandidate(nil), s.d.Invite.SelectedContacts...)
}

// SetInviteMessage overwrites the invite message.
func (s *Session) SetInviteMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.Invite.Message = text
}

// ConfirmInvites records that the user went through the invite-send flow,
// unlocking completion while contacts are selected.
func (s *Session) ConfirmInvites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitesConfirmed = true
	s.invitesDeferred = false
}

// SkipInvites records an explicit deferral: the entity is created without
// sending invites to the selected contacts.
func (s *Session) SkipInvites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitesDeferred = true
	s.invitesConfirmed = false
}

// Complete finalizes the wizard from step 3. With contacts selected it
// requires a prior ConfirmInvites or SkipInvites. On success the draft is
// cleared, confirmed invites are issued for the new entity, and the session
// resets to a fresh step-1 draft. On failure the draft survives untouched so
// the user can retry.
func (s *Session) Complete(ctx context.Context) (entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.d.Step != draft.StepInvite {
		return entity.Entity{}, ErrNotAtInviteStep
	}
	selected := s.d.Invite.SelectedContacts
	if len(selected) > 0 && !s.invitesConfirmed && !s.invitesDeferred {
		return entity.Entity{}, ErrInvitesUndecided
	}

	created, err := s.submitter.Submit(ctx, s.userID, s.d)
	if err != nil {
		return entity.Entity{}, err
	}

	if len(selected) > 0 && s.invitesConfirmed && s.invites != nil {
		if _, err := s.invites.Send(ctx, s.userID, created.ID, created.Name, s.d.Invite.Message, selected); err != nil {
			s.log.WithError(err).WithField("entity_id", created.ID).Warn("invite send failed")
		}
	}

	s.d = draft.Empty()
	s.resetTransientLocked()
	s.candidates = nil
	s.invitesConfirmed = false
	s.invitesDeferred = false
	return created, nil
}
