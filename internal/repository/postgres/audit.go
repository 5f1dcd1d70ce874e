package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alamarhq/alamar/internal/models"
)

type AuditRepo struct {
	DB DBTX
}

const recordAudit = `-- name: RecordAudit
INSERT INTO audit_log (actor_user_id, action, entity_type, entity_id, metadata)
VALUES ($1, $2, $3, $4, $5)
`

func (r *AuditRepo) Record(ctx context.Context, entry models.AuditEntry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("can't marshal audit metadata: %w", err)
	}

	_, err = r.DB.Exec(ctx, recordAudit, entry.ActorUserID, entry.Action, entry.EntityType, entry.EntityID, raw)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
