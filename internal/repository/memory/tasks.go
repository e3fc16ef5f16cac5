package memory

import (
	"context"
	"sort"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
)

type TaskRepository struct {
	db *DB
}

func (r *TaskRepository) Create(_ context.Context, t *model.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	t.ID = r.db.id()
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	stored := *t
	stored.AssignedUsers = nil
	r.db.tasks[t.ID] = stored
	return nil
}

func (r *TaskRepository) FindByID(_ context.Context, id uint64) (*model.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, pkg.ErrTaskNotFound
	}
	for _, uid := range r.db.assignments[id] {
		if u, ok := r.db.users[uid]; ok {
			t.AssignedUsers = append(t.AssignedUsers, cloneUser(u))
		}
	}
	return &t, nil
}

func (r *TaskRepository) ListByCommunity(_ context.Context, communityID uint64, offset, limit int) ([]model.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Task, 0)
	for _, t := range r.db.tasks {
		if t.CommunityID == communityID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, offset, limit), nil
}

func (r *TaskRepository) Update(_ context.Context, t *model.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.tasks[t.ID]
	if !ok {
		return pkg.ErrTaskNotFound
	}
	existing.Status = t.Status
	existing.PriorityScore = t.PriorityScore
	existing.ResponseDateTime = t.ResponseDateTime
	existing.ResponseTime = t.ResponseTime
	existing.CompletedByID = t.CompletedByID
	existing.CompletionTime = t.CompletionTime
	existing.TaskTimeLength = t.TaskTimeLength
	existing.UpdatedAt = r.db.now()
	r.db.tasks[t.ID] = existing
	return nil
}

func (r *TaskRepository) Assign(_ context.Context, taskID, userID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tasks[taskID]; !ok {
		return pkg.ErrTaskNotFound
	}
	if _, ok := r.db.users[userID]; !ok {
		return pkg.ErrUserNotFound
	}
	for _, id := range r.db.assignments[taskID] {
		if id == userID {
			return nil
		}
	}
	r.db.assignments[taskID] = append(r.db.assignments[taskID], userID)
	return nil
}
