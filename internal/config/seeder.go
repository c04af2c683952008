package config

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"queueflow/internal/adapters/persistence/repositories"
	"queueflow/internal/core/domain"
)

// DemoAdminID is the owner of the seeded development queue
const DemoAdminID = "demo-admin"

// SeedDemoQueue creates a demo queue in development mode so the dashboard
// and join flow can be exercised without any setup. Prod deployments skip
// seeding entirely.
func SeedDemoQueue(ctx context.Context, cfg *Config, queueRepo *repositories.QueueRepository) error {
	if !cfg.IsDev() {
		return nil
	}

	existing, err := queueRepo.ListByOwner(ctx, DemoAdminID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	queue := &domain.Queue{
		ID:        uuid.NewString(),
		OwnerID:   DemoAdminID,
		Name:      "Demo Counter",
		Category:  "General",
		Status:    domain.QueueActive,
		CreatedAt: time.Now(),
	}
	if err := queueRepo.Create(ctx, queue); err != nil {
		return err
	}

	log.Printf("✅ Seeded demo queue %s for %s", queue.ID, DemoAdminID)
	return nil
}
