package memory

import (
	"context"
	"sort"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
)

type CommunityRepository struct {
	db *DB
}

// CreateWithFounder 在同一把写锁内完成插入与提升，失败时不留下任何写入
func (r *CommunityRepository) CreateWithFounder(_ context.Context, c *model.Community, founderID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.communities {
		if existing.PinCode == c.PinCode {
			return pkg.ErrPinTaken
		}
	}
	founder, ok := r.db.users[founderID]
	if !ok {
		return pkg.ErrFounderNotFound
	}
	if founder.CommunityID != nil {
		return pkg.ErrAlreadyMember
	}

	now := r.db.now()
	c.ID = r.db.id()
	c.CreatedAt, c.UpdatedAt = now, now
	r.db.communities[c.ID] = *c

	founder.PromoteToFounder(c.ID)
	founder.UpdatedAt = now
	r.db.users[founder.ID] = founder
	return nil
}

func (r *CommunityRepository) FindByID(_ context.Context, id uint64) (*model.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.communities[id]
	if !ok {
		return nil, pkg.ErrCommunityNotFound
	}
	return &c, nil
}

func (r *CommunityRepository) FindByPin(_ context.Context, pin string) (*model.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, c := range r.db.communities {
		if c.PinCode == pin {
			return &c, nil
		}
	}
	return nil, pkg.ErrCommunityNotFound
}

func (r *CommunityRepository) PinExists(ctx context.Context, pin string) (bool, error) {
	_, err := r.FindByPin(ctx, pin)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *CommunityRepository) List(_ context.Context, offset, limit int) ([]model.Community, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Community, 0, len(r.db.communities))
	for _, c := range r.db.communities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, offset, limit), nil
}

func (r *CommunityRepository) Update(_ context.Context, c *model.Community) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.communities[c.ID]
	if !ok {
		return pkg.ErrCommunityNotFound
	}
	existing.Name = c.Name
	existing.Address = c.Address
	existing.Email = c.Email
	existing.PhoneNumber = c.PhoneNumber
	existing.UpdatedAt = r.db.now()
	r.db.communities[c.ID] = existing
	*c = existing
	return nil
}

func (r *CommunityRepository) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.communities[id]; !ok {
		return pkg.ErrCommunityNotFound
	}
	for uid, u := range r.db.users {
		if u.InCommunity(id) {
			u.CommunityID = nil
			r.db.users[uid] = u
		}
	}
	delete(r.db.communities, id)
	return nil
}
