// Package invites manages entity invitations and the deep-link message
// offered when inviting contacts.
package invites

import (
	"context"
	"fmt"
	"strings"

	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Service manages invites.
type Service struct {
	store       storage.InviteStore
	linkBaseURL string
	log         *logger.Logger
}

// New constructs an invites service. linkBaseURL is the deep-link prefix
// embedded in invite messages.
func New(store storage.InviteStore, linkBaseURL string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("invites")
	}
	if linkBaseURL == "" {
		linkBaseURL = "https://folioworks.app/join"
	}
	return &Service{store: store, linkBaseURL: linkBaseURL, log: log}
}

// Message renders the default invite message for an entity.
func (s *Service) Message(entityName string) string {
	entityName = strings.TrimSpace(entityName)
	if entityName == "" {
		entityName = "our team"
	}
	return fmt.Sprintf("You've been invited to join %s. Tap to accept: %s", entityName, s.linkBaseURL)
}

// Send creates one invite per contact. Store failures on individual
// contacts are logged and skipped; the call fails only when nothing could
// be created.
func (s *Service) Send(ctx context.Context, inviterID, entityID, entityName, message string, contacts []invite.ContactCandidate) ([]invite.Invite, error) {
	if strings.TrimSpace(inviterID) == "" {
		return nil, fmt.Errorf("inviter id is required")
	}
	if strings.TrimSpace(entityID) == "" {
		return nil, fmt.Errorf("entity id is required")
	}
	if message == "" {
		message = s.Message(entityName)
	}

	created := make([]invite.Invite, 0, len(contacts))
	var lastErr error
	for _, c := range contacts {
		inv, err := s.store.CreateInvite(ctx, invite.Invite{
			InviterID: inviterID,
			EntityID:  entityID,
			Name:      c.Name,
			Phone:     c.Phone,
			Email:     c.Email,
			Message:   message,
			Status:    invite.StatusPending,
		})
		if err != nil {
			lastErr = err
			s.log.WithError(err).WithField("contact", c.ID).Warn("invite creation failed")
			continue
		}
		created = append(created, inv)
	}
	if len(created) == 0 && lastErr != nil {
		return nil, fmt.Errorf("send invites: %w", lastErr)
	}
	return created, nil
}

// Create persists a single invite record.
func (s *Service) Create(ctx context.Context, inv invite.Invite) (invite.Invite, error) {
	if strings.TrimSpace(inv.InviterID) == "" {
		return invite.Invite{}, fmt.Errorf("inviter id is required")
	}
	if strings.TrimSpace(inv.Name) == "" {
		return invite.Invite{}, fmt.Errorf("invite name is required")
	}
	if inv.Status == "" {
		inv.Status = invite.StatusPending
	}
	created, err := s.store.CreateInvite(ctx, inv)
	if err != nil {
		return invite.Invite{}, fmt.Errorf("create invite: %w", err)
	}
	return created, nil
}

// List returns the invites issued by a user.
func (s *Service) List(ctx context.Context, inviterID string) ([]invite.Invite, error) {
	return s.store.ListInvites(ctx, inviterID)
}

// MarkSent flips an invite to sent.
func (s *Service) MarkSent(ctx context.Context, id string) (invite.Invite, error) {
	inv, err := s.store.GetInvite(ctx, id)
	if err != nil {
		return invite.Invite{}, err
	}
	inv.Status = invite.StatusSent
	updated, err := s.store.UpdateInvite(ctx, inv)
	if err != nil {
		return invite.Invite{}, fmt.Errorf("mark invite sent: %w", err)
	}
	return updated, nil
}
