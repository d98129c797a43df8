// Package app assembles the entity layer: stores, services, HTTP surface
// and lifecycle management.
package app

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/FolioWorks/entity_layer/internal/app/httpapi"
	"github.com/FolioWorks/entity_layer/internal/app/services/drafts"
	"github.com/FolioWorks/entity_layer/internal/app/services/entities"
	"github.com/FolioWorks/entity_layer/internal/app/services/health"
	"github.com/FolioWorks/entity_layer/internal/app/services/invites"
	"github.com/FolioWorks/entity_layer/internal/app/services/providers"
	"github.com/FolioWorks/entity_layer/internal/app/services/submission"
	"github.com/FolioWorks/entity_layer/internal/app/services/wizard"
	"github.com/FolioWorks/entity_layer/internal/app/storage"
	"github.com/FolioWorks/entity_layer/internal/app/storage/memory"
	"github.com/FolioWorks/entity_layer/internal/app/system"
	"github.com/FolioWorks/entity_layer/internal/identity"
	"github.com/FolioWorks/entity_layer/internal/objectstore"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

// Stores groups the persistence interfaces the application consumes. Nil
// fields fall back to a shared in-memory store.
type Stores struct {
	Drafts    storage.DraftStore
	Entities  storage.EntityStore
	Providers storage.ProviderStore
	Invites   storage.InviteStore
	Roster    storage.RosterStore
}

func (s *Stores) fillDefaults() {
	var mem *memory.Store
	ensure := func() *memory.Store {
		if mem == nil {
			mem = memory.New()
		}
		return mem
	}
	if s.Drafts == nil {
		s.Drafts = ensure()
	}
	if s.Entities == nil {
		s.Entities = ensure()
	}
	if s.Providers == nil {
		s.Providers = ensure()
	}
	if s.Invites == nil {
		s.Invites = ensure()
	}
	if s.Roster == nil {
		s.Roster = ensure()
	}
}

// Options configures an Application.
type Options struct {
	Stores      Stores
	Directory   identity.Directory
	Uploader    objectstore.Uploader
	Redis       *redis.Client
	HealthPing  health.Pinger
	LinkBaseURL string
	DraftTTL    time.Duration
	SweepCron   string
	Logger      *logger.Logger
}

// Application holds the wired services.
type Application struct {
	Drafts     *drafts.Service
	Entities   *entities.Service
	Providers  *providers.Service
	Invites    *invites.Service
	Submission *submission.Service
	Wizard     *wizard.Service
	Health     *health.Service
	API        *httpapi.Handler

	manager *system.Manager
	log     *logger.Logger
}

// New wires an application from options. Missing collaborators get
// development fallbacks: in-memory stores, a static directory and a
// pass-through uploader.
func New(opts Options) (*Application, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("app")
	}

	opts.Stores.fillDefaults()
	if opts.Directory == nil {
		log.Warn("no identity provider configured, using locally minted organization ids")
		opts.Directory = identity.StaticDirectory{}
	}
	if opts.Uploader == nil {
		log.Warn("no object storage configured, image references pass through")
		opts.Uploader = objectstore.PassThrough{}
	}
	if opts.DraftTTL <= 0 {
		opts.DraftTTL = 30 * 24 * time.Hour
	}

	draftSvc := drafts.New(opts.Stores.Drafts, log.WithField("service", "drafts"))
	entitySvc := entities.New(opts.Stores.Entities, log.WithField("service", "entities"))
	providerSvc := providers.New(opts.Stores.Providers, opts.Redis, log.WithField("service", "providers"))
	inviteSvc := invites.New(opts.Stores.Invites, opts.LinkBaseURL, log.WithField("service", "invites"))
	submissionSvc := submission.New(entitySvc, draftSvc, opts.Directory, opts.Uploader, log.WithField("service", "submission"))
	healthSvc := health.New(opts.HealthPing, log.WithField("service", "health"))

	wizardSvc := wizard.New(wizard.Config{
		Drafts:    draftSvc,
		Providers: providerSvc,
		Roster:    opts.Stores.Roster,
		Invites:   inviteSvc,
		Submitter: submissionSvc,
		Persister: entitySvc,
		Logger:    log.WithField("service", "wizard"),
	})

	api := httpapi.New(httpapi.Config{
		Drafts:     draftSvc,
		Entities:   entitySvc,
		Providers:  providerSvc,
		Invites:    inviteSvc,
		Submission: submissionSvc,
		Health:     healthSvc,
		Logger:     log.WithField("service", "httpapi"),
	})

	manager := system.NewManager()
	janitor := drafts.NewJanitor(opts.Stores.Drafts, opts.DraftTTL, opts.SweepCron, log.WithField("service", "draft-janitor"))
	if err := manager.Register(janitor); err != nil {
		return nil, err
	}

	return &Application{
		Drafts:     draftSvc,
		Entities:   entitySvc,
		Providers:  providerSvc,
		Invites:    inviteSvc,
		Submission: submissionSvc,
		Wizard:     wizardSvc,
		Health:     healthSvc,
		API:        api,
		manager:    manager,
		log:        log,
	}, nil
}

// Attach registers an extra lifecycle service.
func (a *Application) Attach(svc system.Service) error {
	return a.manager.Register(svc)
}

// Start launches the background services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop shuts the background services down in reverse order.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
