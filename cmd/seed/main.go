// Command seed loads a provider catalog JSON file into the store, one
// vendor list per configuration category.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	"github.com/FolioWorks/entity_layer/internal/app/domain/entity"
	"github.com/FolioWorks/entity_layer/internal/app/domain/provider"
	"github.com/FolioWorks/entity_layer/internal/app/services/providers"
	"github.com/FolioWorks/entity_layer/internal/app/storage/postgres"
	"github.com/FolioWorks/entity_layer/internal/config"
	"github.com/FolioWorks/entity_layer/pkg/logger"
)

type catalogFile struct {
	Providers []catalogEntry `json:"providers"`
}

type catalogEntry struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	LogoURL     string `json:"logo_url"`
}

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	catalogPath := flag.String("catalog", "./catalog.json", "path to the provider catalog JSON file")
	flag.Parse()

	if err := run(*configPath, *catalogPath); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, catalogPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("seeding requires the postgres driver, got %q", cfg.Database.Driver)
	}

	data, err := os.ReadFile(filepath.Clean(catalogPath))
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	var catalog catalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Providers) == 0 {
		return fmt.Errorf("catalog %s contains no providers", catalogPath)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log := logger.NewDefault("seed")
	svc := providers.New(postgres.New(db), nil, log)

	ctx := context.Background()
	for _, entry := range catalog.Providers {
		p := provider.Provider{
			Category:    entity.CategoryKey(entry.Category),
			Name:        entry.Name,
			Description: entry.Description,
			URL:         entry.URL,
			LogoURL:     entry.LogoURL,
		}
		if _, err := svc.Seed(ctx, p); err != nil {
			return fmt.Errorf("seed %s/%s: %w", entry.Category, entry.Name, err)
		}
		log.WithField("category", entry.Category).WithField("name", entry.Name).Info("provider seeded")
	}
	log.WithField("count", len(catalog.Providers)).Info("catalog seeded")
	return nil
}
