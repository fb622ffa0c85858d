package repository

import (
	"context"
	"encoding/json"

	"github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/infrastructure/persistence/sqlite/model"
)

func (r *ComplianceRepository) AppendHistory(ctx context.Context, event compliance.HistoryEvent) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	payload := event.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "marshal history payload")
	}

	row := model.HistoryEvent{
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Action:      string(event.Action),
		ActorID:     event.ActorID,
		PayloadJSON: string(payloadJSON),
		CreatedAt:   formatTimestamp(event.CreatedAt),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert history event")
	}
	return nil
}

func (r *ComplianceRepository) ListHistory(ctx context.Context, entityType string, entityID uint64) ([]compliance.HistoryEvent, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.HistoryEvent
	if err := db.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query history events")
	}

	items := make([]compliance.HistoryEvent, 0, len(rows))
	for _, row := range rows {
		payload := map[string]any{}
		if row.PayloadJSON != "" {
			if err := json.Unmarshal([]byte(row.PayloadJSON), &payload); err != nil {
				return nil, errs.Wrapf(err, "decode history payload %d", row.ID)
			}
		}
		items = append(items, compliance.HistoryEvent{
			ID:         row.ID,
			EntityType: row.EntityType,
			EntityID:   row.EntityID,
			Action:     compliance.HistoryAction(row.Action),
			ActorID:    row.ActorID,
			Payload:    payload,
			CreatedAt:  parseTimestamp(row.CreatedAt),
		})
	}
	return items, nil
}
