package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgeline/lodgeline/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogSync is the task type for syncing the permission catalog.
	TaskCatalogSync = "authz:catalog_sync"
)

// CatalogSyncPayload carries options for a catalog sync run.
type CatalogSyncPayload struct {
	Prune bool `json:"prune"`
}

// NewCatalogSyncTask constructs an Asynq task.
func NewCatalogSyncTask(payload CatalogSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogSync, data), nil
}

// CatalogSyncHandler upserts the compiled-in permission catalog into the
// database so the stored catalog (used by the super-admin shortcut) cannot
// drift from the code. With Prune set, keys no longer in the catalog are
// removed together with their role links.
func CatalogSyncHandler(pool *pgxpool.Pool) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CatalogSyncPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		entries := shared.Catalog()
		keys := make([]string, len(entries))
		for i, entry := range entries {
			keys[i] = entry.Key
			if _, err := pool.Exec(ctx,
				`INSERT INTO permissions (key, module) VALUES ($1, $2)
				 ON CONFLICT (key) DO UPDATE SET module = EXCLUDED.module`,
				entry.Key, entry.Module); err != nil {
				return err
			}
		}

		if payload.Prune {
			if _, err := pool.Exec(ctx,
				`DELETE FROM role_permissions WHERE permission_key <> ALL($1)`, keys); err != nil {
				return err
			}
			if _, err := pool.Exec(ctx,
				`DELETE FROM permissions WHERE key <> ALL($1)`, keys); err != nil {
				return err
			}
		}
		return nil
	}
}
