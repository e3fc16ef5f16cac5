package handler

import (
	"net/http"

	"Care_Community/internal/model"
	"Care_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	svc *service.DeviceService
}

type DeviceStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func NewDeviceHandler(svc *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

func (h *DeviceHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	devices, err := h.svc.ListDevices(c.Request.Context(), user)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

func (h *DeviceHandler) UpdateStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DeviceStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	device, err := h.svc.UpdateDeviceStatus(c.Request.Context(), user, id, model.DeviceStatus(req.Status))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}
