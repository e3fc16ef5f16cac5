package memory

import (
	"context"
	"sort"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
)

type UserRepository struct {
	db *DB
}

func cloneUser(u model.User) model.User {
	u.CommunityID = ptrCopy(u.CommunityID)
	return u
}

func (r *UserRepository) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return pkg.ErrEmailTaken
		}
	}
	now := r.db.now()
	u.ID = r.db.id()
	u.CreatedAt, u.UpdatedAt = now, now
	r.db.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id uint64) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, pkg.ErrUserNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, pkg.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context, offset, limit int) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return page(r.sorted(func(model.User) bool { return true }), offset, limit), nil
}

func (r *UserRepository) ListByCommunity(_ context.Context, communityID uint64, roles ...model.Role) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.sorted(func(u model.User) bool {
		if !u.InCommunity(communityID) {
			return false
		}
		if len(roles) == 0 {
			return true
		}
		for _, role := range roles {
			if u.Role == role {
				return true
			}
		}
		return false
	}), nil
}

func (r *UserRepository) sorted(keep func(model.User) bool) []model.User {
	out := make([]model.User, 0)
	for _, u := range r.db.users {
		if keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *UserRepository) Update(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.users[u.ID]
	if !ok {
		return pkg.ErrUserNotFound
	}
	for id, other := range r.db.users {
		if id != u.ID && other.Email == u.Email {
			return pkg.ErrEmailTaken
		}
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = r.db.now()
	r.db.users[u.ID] = cloneUser(*u)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return pkg.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}
