package mysql

import (
	"Care_Community/internal/repository"

	"gorm.io/gorm"
)

func NewStore(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(db),
		Communities:   NewCommunityRepository(db),
		Rooms:         NewRoomRepository(db),
		Devices:       NewAlexaDeviceRepository(db),
		Tasks:         NewTaskRepository(db),
		Notifications: NewNotificationRepository(db),
		Outbox:        NewOutboxRepository(db),
	}
}
