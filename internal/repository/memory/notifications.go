package memory

import (
	"context"

	"Care_Community/internal/model"
)

type NotificationRepository struct {
	db *DB
}

func (r *NotificationRepository) Create(_ context.Context, n *model.Notification, recipientIDs []uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n.ID = r.db.id()
	n.CreatedAt = r.db.now()
	stored := *n
	stored.Recipients = nil
	r.db.notifications[n.ID] = stored

	seen := make(map[uint64]bool, len(recipientIDs))
	for _, id := range recipientIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		r.db.recipients[n.ID] = append(r.db.recipients[n.ID], id)
	}
	return nil
}
