package handler

import (
	"net/http"

	"Care_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// RegisterReq 注册请求体，JSON 与表单均可
type RegisterReq struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
	Role     string `json:"role" form:"role"`
	StaffID  string `json:"staff_id" form:"staff_id"`
}

// LoginReq OAuth2 password 表单：username 即邮箱
type LoginReq struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" binding:"required"`
}

func NewUserHandler(auth *service.AuthService, users *service.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// Register 注册接口
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c)
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		StaffID:  req.StaffID,
	})
	if err != nil {
		Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":         user,
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
	})
}

// Login 登录接口，/login 与 /oauth2-login 共用
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c)
		return
	}
	email := req.Username
	if email == "" {
		email = req.Email
	}

	token, err := h.auth.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *UserHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageQuery(c)

	list, err := h.users.ListUsers(c.Request.Context(), user, page, size)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	u, err := h.users.GetUser(c.Request.Context(), user, id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), user, id); err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
