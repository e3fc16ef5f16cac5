package handler

import (
	"net/http"

	"Care_Community/internal/model"
	"Care_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	svc *service.RoomService
}

type RoomCreateReq struct {
	RoomNumber  string  `json:"room_number" binding:"required"`
	CommunityID *uint64 `json:"community_id"`
	ResidentID  *uint64 `json:"resident_id"`
	FloorNumber *int    `json:"floor_number"`
	RoomType    string  `json:"room_type"`
}

type RoomUpdateReq struct {
	RoomNumber  *string `json:"room_number"`
	ResidentID  *uint64 `json:"resident_id"`
	FloorNumber *int    `json:"floor_number"`
	RoomType    *string `json:"room_type"`
}

func NewRoomHandler(svc *service.RoomService) *RoomHandler {
	return &RoomHandler{svc: svc}
}

func (h *RoomHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req RoomCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	room, err := h.svc.CreateRoom(c.Request.Context(), user, service.RoomInput{
		RoomNumber:  req.RoomNumber,
		CommunityID: req.CommunityID,
		ResidentID:  req.ResidentID,
		FloorNumber: req.FloorNumber,
		RoomType:    req.RoomType,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	room, err := h.svc.GetRoom(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) Mine(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rooms, err := h.svc.MyRooms(c.Request.Context(), user)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RoomUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	room, err := h.svc.UpdateRoom(c.Request.Context(), user, id, model.RoomPatch{
		RoomNumber:  req.RoomNumber,
		ResidentID:  req.ResidentID,
		FloorNumber: req.FloorNumber,
		RoomType:    req.RoomType,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteRoom(c.Request.Context(), user, id); err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *RoomHandler) AlexaStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	status, err := h.svc.RoomAlexaStatus(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
