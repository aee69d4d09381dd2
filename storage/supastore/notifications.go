package supastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
)

type notificationRow struct {
	ID        int             `json:"id"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details"`
	IsRead    *bool           `json:"is_read"`
	UserID    *int            `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

func (row *notificationRow) toNotification() *models.Notification {
	return &models.Notification{
		ID:        row.ID,
		Type:      row.Type,
		Message:   row.Message,
		Details:   row.Details,
		IsRead:    row.IsRead,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
	}
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	payload := map[string]any{
		"type":    n.Type,
		"message": n.Message,
	}
	if len(n.Details) > 0 {
		payload["details"] = json.RawMessage(n.Details)
	}
	if n.UserID != nil {
		payload["user_id"] = *n.UserID
	}
	raw, err := s.do(ctx, http.MethodPost, "/notifications", nil, payload, "return=representation")
	if err != nil {
		return err
	}
	var rows []notificationRow
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return utils.NewStorageError("decode created notification row", err)
	}
	*n = *rows[0].toNotification()
	return nil
}

func (s *Store) Notifications(ctx context.Context, unreadOnly bool) ([]*models.Notification, error) {
	query := url.Values{"order": {"id.desc"}}
	if unreadOnly {
		query.Set("is_read", "eq.false")
	}
	raw, err := s.do(ctx, http.MethodGet, "/notifications", query, nil, "")
	if err != nil {
		return nil, err
	}
	var rows []notificationRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode notification rows", err)
	}
	out := make([]*models.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toNotification())
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int) (*models.Notification, error) {
	raw, err := s.do(ctx, http.MethodPatch, "/notifications", url.Values{"id": {eq(id)}},
		map[string]any{"is_read": true}, "return=representation")
	if err != nil {
		return nil, err
	}
	var rows []notificationRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode updated notification row", err)
	}
	if len(rows) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return rows[0].toNotification(), nil
}
