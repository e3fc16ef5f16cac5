package handler

import (
	"net/http"
	"strconv"

	"Care_Community/internal/model"
	"Care_Community/internal/pkg"

	"github.com/gin-gonic/gin"
)

// ContextUserKey 认证中间件写入的当前用户
const ContextUserKey = "current_user"

var statusOf = map[pkg.Kind]int{
	pkg.KindValidation:   http.StatusBadRequest,
	pkg.KindUnauthorized: http.StatusUnauthorized,
	pkg.KindNotFound:     http.StatusNotFound,
	pkg.KindForbidden:    http.StatusForbidden,
	pkg.KindConflict:     http.StatusConflict,
	pkg.KindTransaction:  http.StatusInternalServerError,
	pkg.KindInternal:     http.StatusInternalServerError,
}

// Fail 按错误分类返回状态码；内部错误不透出细节
func Fail(c *gin.Context, err error) {
	kind := pkg.KindOf(err)
	status := statusOf[kind]
	if kind == pkg.KindInternal || kind == pkg.KindTransaction {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"msg": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"msg": err.Error()})
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
}

func currentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "unauthorized"})
		return nil, false
	}
	return v.(*model.User), true
}

func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c)
		return 0, false
	}
	return id, true
}

// pageQuery 与旧接口一致：?page=1&size=20
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return page, size
}
