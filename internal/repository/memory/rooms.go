package memory

import (
	"context"
	"sort"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"
)

type RoomRepository struct {
	db *DB
}

func cloneRoom(r model.Room) model.Room {
	r.ResidentID = ptrCopy(r.ResidentID)
	r.FloorNumber = ptrCopy(r.FloorNumber)
	r.AlexaDevices = nil
	return r
}

// withDevices 模拟 Preload("AlexaDevices")，调用方需持有读锁
func (r *RoomRepository) withDevices(room model.Room) model.Room {
	room = cloneRoom(room)
	for _, d := range r.db.devices {
		if d.RoomID == room.ID {
			room.AlexaDevices = append(room.AlexaDevices, d)
		}
	}
	sort.Slice(room.AlexaDevices, func(i, j int) bool { return room.AlexaDevices[i].ID < room.AlexaDevices[j].ID })
	return room
}

// conflicts 按冲突字段返回对应的唯一键错误
func (r *RoomRepository) conflicts(room *model.Room) error {
	for id, other := range r.db.rooms {
		if id == room.ID {
			continue
		}
		if other.RoomNumber == room.RoomNumber {
			return pkg.ErrRoomNumberTaken
		}
		if room.ResidentID != nil && other.ResidentID != nil && *other.ResidentID == *room.ResidentID {
			return pkg.ErrResidentAssigned
		}
	}
	return nil
}

func (r *RoomRepository) Create(_ context.Context, room *model.Room) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.conflicts(room); err != nil {
		return err
	}
	now := r.db.now()
	room.ID = r.db.id()
	room.CreatedAt, room.UpdatedAt = now, now
	r.db.rooms[room.ID] = cloneRoom(*room)
	return nil
}

func (r *RoomRepository) FindByID(_ context.Context, id uint64) (*model.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	room, ok := r.db.rooms[id]
	if !ok {
		return nil, pkg.ErrRoomNotFound
	}
	room = r.withDevices(room)
	return &room, nil
}

func (r *RoomRepository) FindByNumber(_ context.Context, number string, communityID uint64) (*model.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, room := range r.db.rooms {
		if room.RoomNumber == number && room.CommunityID == communityID {
			room = cloneRoom(room)
			return &room, nil
		}
	}
	return nil, pkg.ErrRoomNotFound
}

func (r *RoomRepository) ListByCommunity(_ context.Context, communityID uint64) ([]model.Room, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]model.Room, 0)
	for _, room := range r.db.rooms {
		if room.CommunityID == communityID {
			out = append(out, r.withDevices(room))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (r *RoomRepository) Update(_ context.Context, room *model.Room) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.rooms[room.ID]
	if !ok {
		return pkg.ErrRoomNotFound
	}
	if err := r.conflicts(room); err != nil {
		return err
	}
	existing.RoomNumber = room.RoomNumber
	existing.ResidentID = ptrCopy(room.ResidentID)
	existing.FloorNumber = ptrCopy(room.FloorNumber)
	existing.RoomType = room.RoomType
	existing.UpdatedAt = r.db.now()
	r.db.rooms[room.ID] = existing
	return nil
}

func (r *RoomRepository) Delete(_ context.Context, id uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.rooms[id]; !ok {
		return pkg.ErrRoomNotFound
	}
	// 与 alexa_devices.room_id 外键一致
	for _, d := range r.db.devices {
		if d.RoomID == id {
			return pkg.ErrRoomHasDevices
		}
	}
	delete(r.db.rooms, id)
	return nil
}
