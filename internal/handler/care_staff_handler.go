package handler

import (
	"net/http"
	"strconv"

	"Care_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type CareStaffHandler struct {
	svc *service.CareStaffService
}

type CareStaffCreateReq struct {
	Name        string  `json:"name"`
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	StaffID     string  `json:"staff_id"`
	CommunityID *uint64 `json:"community_id"`
}

type CareStaffUpdateReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	StaffID  *string `json:"staff_id"`
}

func NewCareStaffHandler(svc *service.CareStaffService) *CareStaffHandler {
	return &CareStaffHandler{svc: svc}
}

func (h *CareStaffHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req CareStaffCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	staff, err := h.svc.CreateCareStaff(c.Request.Context(), user, service.CareStaffInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		StaffID:     req.StaffID,
		CommunityID: req.CommunityID,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, staff)
}

// List 默认当前用户所在社区，可用 ?community_id= 指定
func (h *CareStaffHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var communityID uint64
	if raw := c.Query("community_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c)
			return
		}
		communityID = id
	} else if user.CommunityID != nil {
		communityID = *user.CommunityID
	}

	staff, err := h.svc.ListCareStaff(c.Request.Context(), user, communityID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *CareStaffHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	staff, err := h.svc.GetCareStaff(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *CareStaffHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CareStaffUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	staff, err := h.svc.UpdateCareStaff(c.Request.Context(), user, id, service.CareStaffPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		StaffID:  req.StaffID,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (h *CareStaffHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteCareStaff(c.Request.Context(), user, id); err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
