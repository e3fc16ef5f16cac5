package memory

import (
	"context"
	"sort"
	"time"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
)

type AlexaDeviceRepository struct {
	db *DB
}

func (r *AlexaDeviceRepository) Create(_ context.Context, d *model.AlexaDevice) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.devices {
		if existing.DeviceID == d.DeviceID {
			return pkg.ErrAlreadyPaired
		}
	}
	now := r.db.now()
	d.ID = r.db.id()
	if d.Status == "" {
		d.Status = model.DeviceStatusActive
	}
	d.CreatedAt, d.UpdatedAt = now, now
	r.db.devices[d.ID] = *d
	return nil
}

func (r *AlexaDeviceRepository) FindByID(_ context.Context, id uint64) (*model.AlexaDevice, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	d, ok := r.db.devices[id]
	if !ok {
		return nil, pkg.ErrDeviceNotFound
	}
	return &d, nil
}

func (r *AlexaDeviceRepository) FindByDeviceID(_ context.Context, deviceID string) (*model.AlexaDevice, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, d := range r.db.devices {
		if d.DeviceID == deviceID {
			return &d, nil
		}
	}
	return nil, pkg.ErrDeviceNotFound
}

func (r *AlexaDeviceRepository) List(_ context.Context) ([]model.AlexaDevice, error) {
	return r.filter(func(model.AlexaDevice) bool { return true }), nil
}

func (r *AlexaDeviceRepository) ListByCommunity(_ context.Context, communityID uint64) ([]model.AlexaDevice, error) {
	return r.filter(func(d model.AlexaDevice) bool { return d.CommunityID == communityID }), nil
}

func (r *AlexaDeviceRepository) filter(keep func(model.AlexaDevice) bool) []model.AlexaDevice {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.AlexaDevice, 0)
	for _, d := range r.db.devices {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *AlexaDeviceRepository) UpdateStatus(_ context.Context, id uint64, status model.DeviceStatus) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.devices[id]
	if !ok {
		return pkg.ErrDeviceNotFound
	}
	d.Status = status
	d.UpdatedAt = r.db.now()
	r.db.devices[id] = d
	return nil
}

func (r *AlexaDeviceRepository) RecordRequest(_ context.Context, id uint64, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.devices[id]
	if !ok {
		return nil
	}
	d.LastRequest = &at
	d.TotalNumberRequested++
	r.db.devices[id] = d
	return nil
}
