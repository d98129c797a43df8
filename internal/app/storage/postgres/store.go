package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/invite"
	"github.com/FolioWorks/entity_layer/internal/app/domain/provider"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.DraftStore = (*Store)(nil)
var _ storage.EntityStore = (*Store)(nil)
var _ storage.ProviderStore = (*Store)(nil)
var _ storage.InviteStore = (*Store)(nil)
var _ storage.RosterStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// --- DraftStore -------------------------------------------------------------

func (s *Store) PutDraft(ctx context.Context, userID string, payload []byte, updatedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wizard_drafts (user_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET payload = $2, updated_at = $3
	`, userID, payload, updatedAt.UTC())
	return err
}

func (s *Store) GetDraft(ctx context.Context, userID string) ([]byte, time.Time, error) {
	var row struct {
		Payload   []byte    `db:"payload"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT payload, updated_at FROM wizard_drafts WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, time.Time{}, notFound(err)
	}
	return row.Payload, row.UpdatedAt, nil
}

func (s *Store) DeleteDraft(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM wizard_drafts WHERE user_id = $1`, userID)
	return err
}

func (s *Store) ListDraftsBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var users []string
	err := s.db.SelectContext(ctx, &users, `
		SELECT user_id FROM wizard_drafts WHERE updated_at < $1
	`, cutoff.UTC())
	return users, err
}

// --- EntityStore ------------------------------------------------------------

type entityRow struct {
	ID            string    `db:"id"`
	OwnerID       string    `db:"owner_id"`
	Name          string    `db:"name"`
	Handle        string    `db:"handle"`
	Brief         string    `db:"brief"`
	Type          string    `db:"type"`
	OrgID         string    `db:"org_id"`
	BannerURL     string    `db:"banner_url"`
	AvatarURL     string    `db:"avatar_url"`
	SocialLinks   []byte    `db:"social_links"`
	Configuration []byte    `db:"configuration"`
	CompletedKeys []byte    `db:"completed_keys"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r entityRow) toDomain() (entity.Entity, error) {
	ent := entity.Entity{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Handle:    r.Handle,
		Brief:     r.Brief,
		Type:      r.Type,
		OrgID:     r.OrgID,
		BannerURL: r.BannerURL,
		AvatarURL: r.AvatarURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.SocialLinks) > 0 {
		if err := json.Unmarshal(r.SocialLinks, &ent.SocialLinks); err != nil {
			return entity.Entity{}, err
		}
	}
	if len(r.Configuration) > 0 {
		if err := json.Unmarshal(r.Configuration, &ent.Configuration); err != nil {
			return entity.Entity{}, err
		}
	}
	if len(r.CompletedKeys) > 0 {
		if err := json.Unmarshal(r.CompletedKeys, &ent.CompletedKeys); err != nil {
			return entity.Entity{}, err
		}
	}
	return ent, nil
}

func marshalEntityJSON(ent entity.Entity) (links, config, completed []byte, err error) {
	if links, err = json.Marshal(ent.SocialLinks); err != nil {
		return nil, nil, nil, err
	}
	if config, err = json.Marshal(ent.Configuration); err != nil {
		return nil, nil, nil, err
	}
	if completed, err = json.Marshal(ent.CompletedKeys); err != nil {
		return nil, nil, nil, err
	}
	return links, config, completed, nil
}

func (s *Store) CreateEntity(ctx context.Context, ent entity.Entity) (entity.Entity, error) {
	if ent.ID == "" {
		ent.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ent.CreatedAt = now
	ent.UpdatedAt = now

	links, config, completed, err := marshalEntityJSON(ent)
	if err != nil {
		return entity.Entity{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entities (id, owner_id, name, handle, brief, type, org_id,
			banner_url, avatar_url, social_links, configuration, completed_keys,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, ent.ID, ent.OwnerID, ent.Name, ent.Handle, ent.Brief, ent.Type, ent.OrgID,
		ent.BannerURL, ent.AvatarURL, links, config, completed, ent.CreatedAt, ent.UpdatedAt)
	if err != nil {
		return entity.Entity{}, err
	}
	return ent, nil
}

func (s *Store) UpdateEntity(ctx context.Context, ent entity.Entity) (entity.Entity, error) {
	existing, err := s.GetEntity(ctx, ent.ID)
	if err != nil {
		return entity.Entity{}, err
	}

	ent.CreatedAt = existing.CreatedAt
	ent.UpdatedAt = time.Now().UTC()

	links, config, completed, err := marshalEntityJSON(ent)
	if err != nil {
		return entity.Entity{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE entities
		SET owner_id = $2, name = $3, handle = $4, brief = $5, type = $6,
			org_id = $7, banner_url = $8, avatar_url = $9, social_links = $10,
			configuration = $11, completed_keys = $12, updated_at = $13
		WHERE id = $1
	`, ent.ID, ent.OwnerID, ent.Name, ent.Handle, ent.Brief, ent.Type, ent.OrgID,
		ent.BannerURL, ent.AvatarURL, links, config, completed, ent.UpdatedAt)
	if err != nil {
		return entity.Entity{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entity.Entity{}, storage.ErrNotFound
	}
	return ent, nil
}

func (s *Store) GetEntity(ctx context.Context, id string) (entity.Entity, error) {
	var row entityRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_id, name, handle, brief, type, org_id, banner_url,
			avatar_url, social_links, configuration, completed_keys,
			created_at, updated_at
		FROM entities
		WHERE id = $1
	`, id)
	if err != nil {
		return entity.Entity{}, notFound(err)
	}
	return row.toDomain()
}

func (s *Store) ListEntities(ctx context.Context, ownerID string) ([]entity.Entity, error) {
	var rows []entityRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, name, handle, brief, type, org_id, banner_url,
			avatar_url, social_links, configuration, completed_keys,
			created_at, updated_at
		FROM entities
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Entity, 0, len(rows))
	for _, row := range rows {
		ent, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, ent)
	}
	return out, nil
}

// --- ProviderStore ----------------------------------------------------------

type providerRow struct {
	ID          string    `db:"id"`
	Category    string    `db:"category"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	URL         string    `db:"url"`
	LogoURL     string    `db:"logo_url"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s *Store) CreateProvider(ctx context.Context, p provider.Provider) (provider.Provider, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO providers (id, category, name, description, url, logo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, string(p.Category), p.Name, p.Description, p.URL, p.LogoURL, p.CreatedAt)
	if err != nil {
		return provider.Provider{}, err
	}
	return p, nil
}

func (s *Store) ListProviders(ctx context.Context, category entity.CategoryKey) ([]provider.Provider, error) {
	var rows []providerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, category, name, description, url, logo_url, created_at
		FROM providers
		WHERE category = $1
		ORDER BY name ASC
	`, string(category))
	if err != nil {
		return nil, err
	}

	out := make([]provider.Provider, 0, len(rows))
	for _, row := range rows {
		out = append(out, provider.Provider{
			ID:          row.ID,
			Category:    entity.CategoryKey(row.Category),
			Name:        row.Name,
			Description: row.Description,
			URL:         row.URL,
			LogoURL:     row.LogoURL,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

// --- InviteStore ------------------------------------------------------------

type inviteRow struct {
	ID        string         `db:"id"`
	InviterID string         `db:"inviter_id"`
	EntityID  sql.NullString `db:"entity_id"`
	Name      string         `db:"name"`
	Phone     string         `db:"phone"`
	Email     string         `db:"email"`
	Message   string         `db:"message"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r inviteRow) toDomain() invite.Invite {
	return invite.Invite{
		ID:        r.ID,
		InviterID: r.InviterID,
		EntityID:  r.EntityID.String,
		Name:      r.Name,
		Phone:     r.Phone,
		Email:     r.Email,
		Message:   r.Message,
		Status:    invite.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateInvite(ctx context.Context, inv invite.Invite) (invite.Invite, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invites (id, inviter_id, entity_id, name, phone, email,
			message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, inv.ID, inv.InviterID, nullString(inv.EntityID), inv.Name, inv.Phone,
		inv.Email, inv.Message, string(inv.Status), inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return invite.Invite{}, err
	}
	return inv, nil
}

func (s *Store) UpdateInvite(ctx context.Context, inv invite.Invite) (invite.Invite, error) {
	inv.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE invites
		SET entity_id = $2, message = $3, status = $4, updated_at = $5
		WHERE id = $1
	`, inv.ID, nullString(inv.EntityID), inv.Message, string(inv.Status), inv.UpdatedAt)
	if err != nil {
		return invite.Invite{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return invite.Invite{}, storage.ErrNotFound
	}
	return inv, nil
}

func (s *Store) GetInvite(ctx context.Context, id string) (invite.Invite, error) {
	var row inviteRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, inviter_id, entity_id, name, phone, email, message, status,
			created_at, updated_at
		FROM invites
		WHERE id = $1
	`, id)
	if err != nil {
		return invite.Invite{}, notFound(err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListInvites(ctx context.Context, inviterID string) ([]invite.Invite, error) {
	var rows []inviteRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, inviter_id, entity_id, name, phone, email, message, status,
			created_at, updated_at
		FROM invites
		WHERE inviter_id = $1
		ORDER BY created_at DESC
	`, inviterID)
	if err != nil {
		return nil, err
	}

	out := make([]invite.Invite, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// --- RosterStore ------------------------------------------------------------

func (s *Store) AddRosterContact(ctx context.Context, ownerID string, c invite.ContactCandidate) (invite.ContactCandidate, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roster_contacts (id, owner_id, name, phone, email)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, ownerID, c.Name, c.Phone, c.Email)
	if err != nil {
		return invite.ContactCandidate{}, err
	}
	return c, nil
}

func (s *Store) ListRoster(ctx context.Context, ownerID string) ([]invite.ContactCandidate, error) {
	var rows []struct {
		ID    string `db:"id"`
		Name  string `db:"name"`
		Phone string `db:"phone"`
		Email string `db:"email"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, phone, email
		FROM roster_contacts
		WHERE owner_id = $1
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]invite.ContactCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, invite.ContactCandidate{ID: row.ID, Name: row.Name, Phone: row.Phone, Email: row.Email})
	}
	return out, nil
}
