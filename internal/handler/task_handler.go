package handler

import (
	"net/http"
	"strconv"

	"Care_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

type TaskCreateReq struct {
	Description   string  `json:"description" binding:"required"`
	RoomID        *uint64 `json:"room_id"`
	PriorityScore *int    `json:"priority_score"`
}

type TaskAssignReq struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req TaskCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	task, err := h.svc.IntakeHuman(c.Request.Context(), user, service.TaskInput{
		Description:   req.Description,
		RoomID:        req.RoomID,
		PriorityScore: req.PriorityScore,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageQuery(c)
	var communityID *uint64
	if raw := c.Query("community_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c)
			return
		}
		communityID = &id
	}

	tasks, err := h.svc.ListTasks(c.Request.Context(), user, communityID, page, size)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.svc.GetTask(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Assign(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req TaskAssignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	task, err := h.svc.AssignTask(c.Request.Context(), user, id, req.UserID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Respond(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.svc.Respond(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Complete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := h.svc.Complete(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
