// Package submission orchestrates the terminal wizard action: create the
// backing organization, upload images, persist the entity and clear the
// draft.
package submission

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/FolioWorks/entity_layer/internal/app/domain/draft"
	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/metrics"
	"github.com/FolioWorks/entity_layer/internal/app/services/drafts"
	"github.com/FolioWorks/entity_layer/internal/app/services/entities"
	"github.com/FolioWorks/entity_layer/internal/identity"
	"github.com/FolioWorks/entity_layer/internal/objectstore"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

const imageBucket = "entity-images"

// Service finalizes drafts into entities.
type Service struct {
	entities  *entities.Service
	drafts    *drafts.Service
	directory identity.Directory
	uploader  objectstore.Uploader
	log       *logger.Logger
}

// New constructs a submission service.
func New(entitySvc *entities.Service, draftSvc *drafts.Service, directory identity.Directory, uploader objectstore.Uploader, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("submission")
	}
	return &Service{
		entities:  entitySvc,
		drafts:    draftSvc,
		directory: directory,
		uploader:  uploader,
		log:       log,
	}
}

// Submit runs the creation sequence: organization, images, entity record.
// Organization creation is fatal. Image upload failures are logged and the
// entity proceeds without that image. An entity store failure leaves the
// draft in place so the user can retry; the already-created organization is
// not rolled back and its ID is logged for reconciliation.
func (s *Service) Submit(ctx context.Context, userID string, d draft.Draft) (entity.Entity, error) {
	if strings.TrimSpace(userID) == "" {
		return entity.Entity{}, fmt.Errorf("user id is required")
	}
	name := strings.TrimSpace(d.Profile.Name)
	if name == "" {
		return entity.Entity{}, fmt.Errorf("entity name is required")
	}

	org, err := s.directory.CreateOrganization(ctx, name, slugify(name))
	if err != nil {
		metrics.RecordSubmission("org_failed")
		return entity.Entity{}, fmt.Errorf("create organization: %w", err)
	}

	bannerURL := s.uploadImage(ctx, d.Profile.BannerRef, "banner-"+org.ID)
	avatarURL := s.uploadImage(ctx, d.Profile.AvatarRef, "avatar-"+org.ID)

	created, err := s.entities.Create(ctx, entity.Entity{
		OwnerID:       userID,
		Name:          name,
		Handle:        strings.TrimSpace(d.Profile.Handle),
		Brief:         d.Profile.Brief,
		Type:          d.Profile.Type,
		OrgID:         org.ID,
		BannerURL:     bannerURL,
		AvatarURL:     avatarURL,
		SocialLinks:   d.Profile.SocialLinks,
		Configuration: d.Configuration.Data,
		CompletedKeys: d.Configuration.CompletedKeys,
	})
	if err != nil {
		metrics.RecordSubmission("entity_failed")
		s.log.WithContext(ctx).
			WithError(err).
			WithField("org_id", org.ID).
			Error("entity creation failed after organization was created; organization is orphaned")
		return entity.Entity{}, err
	}

	if err := s.drafts.Clear(ctx, userID); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("draft clear failed after submission")
	}

	metrics.RecordSubmission("success")
	return created, nil
}

// uploadImage stores a local image reference and returns its public URL.
// Failures are swallowed: the entity is created without the image.
func (s *Service) uploadImage(ctx context.Context, localRef, fileName string) string {
	if localRef == "" {
		return ""
	}
	url, err := s.uploader.Upload(ctx, localRef, imageBucket, fileName)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("file", fileName).Warn("image upload failed")
		return ""
	}
	return url
}

// slugify lowercases the name and collapses runs of non-alphanumerics into
// single dashes.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
