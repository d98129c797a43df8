// Package drafts implements the single-slot wizard draft store: one
// in-progress entity draft per user, fully overwritten on every save.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/metrics"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Service manages draft persistence.
type Service struct {
	store storage.DraftStore
	log   *logger.Logger
}

// New constructs a drafts service.
func New(store storage.DraftStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("drafts")
	}
	return &Service{store: store, log: log}
}

// Load returns the user's draft. A missing or corrupt slot yields a fresh
// empty draft at step 1; only storage failures surface as errors.
func (s *Service) Load(ctx context.Context, userID string) (draft.Draft, error) {
	if strings.TrimSpace(userID) == "" {
		return draft.Draft{}, fmt.Errorf("user id is required")
	}

	payload, updatedAt, err := s.store.GetDraft(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return draft.Empty(), nil
		}
		return draft.Draft{}, fmt.Errorf("load draft: %w", err)
	}

	d, ok := decode(payload)
	if !ok {
		s.log.WithContext(ctx).
			WithField("shape", describeBlob(payload)).
			Warn("draft blob unreadable, starting fresh")
		return draft.Empty(), nil
	}
	d.UpdatedAt = updatedAt
	metrics.RecordDraftOp("load")
	return d, nil
}

// Save overwrites the user's draft slot.
func (s *Service) Save(ctx context.Context, userID string, d draft.Draft) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	d.Normalize()
	d.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.PutDraft(ctx, userID, payload, d.UpdatedAt); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	metrics.RecordDraftOp("save")
	return nil
}

// Clear destroys the user's draft slot.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if err := s.store.DeleteDraft(ctx, userID); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	metrics.RecordDraftOp("clear")
	return nil
}

// decode strictly unmarshals a draft blob, normalizing what it accepts.
func decode(payload []byte) (draft.Draft, bool) {
	var d draft.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return draft.Draft{}, false
	}
	d.Normalize()
	return d, true
}

// describeBlob summarizes an unreadable blob for the log line. The blob is
// versionless, so legacy shapes from older clients are expected here.
func describeBlob(payload []byte) string {
	if !gjson.ValidBytes(payload) {
		return "invalid json"
	}
	step := gjson.GetBytes(payload, "step")
	if !step.Exists() {
		return "json without step field"
	}
	return fmt.Sprintf("json with step=%s", step.Raw)
}
