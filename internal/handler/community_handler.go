package handler

import (
	"net/http"

	"Care_Community/internal/model"
	"Care_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc       *service.CommunityService
	rooms     *service.RoomService
	careStaff *service.CareStaffService
	devices   *service.DeviceService
}

type CommunityCreateReq struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address" binding:"required"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type CommunityUpdateReq struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

func NewCommunityHandler(svc *service.Services) *CommunityHandler {
	return &CommunityHandler{
		svc:       svc.Communities,
		rooms:     svc.Rooms,
		careStaff: svc.CareStaff,
		devices:   svc.Devices,
	}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	community, err := h.svc.CreateCommunity(c.Request.Context(), user, service.CommunityInput{
		Name:        req.Name,
		Address:     req.Address,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, community)
}

func (h *CommunityHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageQuery(c)

	list, err := h.svc.ListCommunities(c.Request.Context(), user, page, size)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CommunityHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	community, err := h.svc.GetCommunity(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommunityUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	community, err := h.svc.UpdateCommunity(c.Request.Context(), user, id, model.CommunityPatch{
		Name:        req.Name,
		Address:     req.Address,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCommunity(c.Request.Context(), user, id); err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Manager 当前经理所管理的社区
func (h *CommunityHandler) Manager(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	community, err := h.svc.ManagerCommunity(c.Request.Context(), user)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, community)
}

func (h *CommunityHandler) Rooms(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	rooms, err := h.rooms.ListRooms(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *CommunityHandler) CareStaff(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	staff, err := h.careStaff.ListCareStaff(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *CommunityHandler) Devices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	devices, err := h.devices.ListCommunityDevices(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}
