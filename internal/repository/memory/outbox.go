package memory

import (
	"context"
	"sort"

	"Care_Community/internal/model"
)

type OutboxRepository struct {
	db *DB
}

func (r *OutboxRepository) Enqueue(_ context.Context, ob *model.TaskOutbox) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ob.ID = r.db.id()
	ob.Status = model.OutboxPending
	ob.CreatedAt = r.db.now()
	ob.UpdatedAt = ob.CreatedAt
	r.db.outbox[ob.ID] = *ob
	return nil
}

func (r *OutboxRepository) ListDue(_ context.Context, batchSize, maxRetry int) ([]model.TaskOutbox, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.TaskOutbox, 0)
	for _, ob := range r.db.outbox {
		if ob.Status != model.OutboxSent && ob.Retry < maxRetry {
			out = append(out, ob)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if batchSize > 0 && len(out) > batchSize {
		out = out[:batchSize]
	}
	return out, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, id uint64) error {
	return r.update(id, func(ob *model.TaskOutbox) { ob.Status = model.OutboxSent })
}

func (r *OutboxRepository) MarkRetry(_ context.Context, id uint64) error {
	return r.update(id, func(ob *model.TaskOutbox) {
		ob.Status = model.OutboxFailed
		ob.Retry++
	})
}

func (r *OutboxRepository) update(id uint64, fn func(*model.TaskOutbox)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ob, ok := r.db.outbox[id]
	if !ok {
		return nil
	}
	fn(&ob)
	ob.UpdatedAt = r.db.now()
	r.db.outbox[id] = ob
	return nil
}
