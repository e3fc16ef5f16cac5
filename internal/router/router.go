package router

import (
	"net/http"
	"time"

	"Care_Community/internal/handler"
	"Care_Community/internal/middleware"
	"Care_Community/internal/service"
	"Care_Community/internal/voice"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func InitRouter(svc *service.Services, log *zap.Logger, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.Timeout(opts.RequestTimeout),
		cors.New(corsConfig(opts.CORSOrigins)),
	)

	user := handler.NewUserHandler(svc.Auth, svc.Users)
	community := handler.NewCommunityHandler(svc)
	room := handler.NewRoomHandler(svc.Rooms)
	careStaff := handler.NewCareStaffHandler(svc.CareStaff)
	device := handler.NewDeviceHandler(svc.Devices)
	task := handler.NewTaskHandler(svc.Tasks)
	alexa := handler.NewAlexaHandler(voice.NewDispatcher(svc.Devices, svc.Tasks, log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})

	// 语音平台 webhook，设备通过 PIN 配对，无需登录
	r.POST("/alexa/actions", alexa.Actions)

	// 用户相关接口
	public := r.Group("/api")
	{
		public.POST("/register", user.Register)
		public.POST("/login", user.Login)
		public.POST("/oauth2-login", user.Login)
	}

	// 登录态接口
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(svc.Auth))
	{
		api.POST("/logout", user.Logout)
		api.GET("/users/me", user.Me)
		api.GET("/users/", user.List)
		api.GET("/users/:id", user.Get)
		api.DELETE("/users/:id", user.Delete)

		api.GET("/community/manager", community.Manager)
		api.GET("/my-community/rooms", room.Mine)
	}

	// 社区相关接口
	communityGroup := api.Group("/communities")
	{
		communityGroup.POST("/", community.Create)
		communityGroup.GET("/", community.List)
		communityGroup.GET("/:id", community.Get)
		communityGroup.PUT("/:id", community.Update)
		communityGroup.DELETE("/:id", community.Delete)
		communityGroup.GET("/:id/rooms", community.Rooms)
		communityGroup.GET("/:id/care_staff/", community.CareStaff)
		communityGroup.GET("/:id/alexa-devices/", community.Devices)
	}

	// 房间相关接口
	roomGroup := api.Group("/rooms")
	{
		roomGroup.POST("/", room.Create)
		roomGroup.GET("/:id", room.Get)
		roomGroup.PUT("/:id", room.Update)
		roomGroup.DELETE("/:id", room.Delete)
		roomGroup.GET("/:id/alexa-status", room.AlexaStatus)
	}

	// 护理人员相关接口
	staffGroup := api.Group("/care_staff")
	{
		staffGroup.POST("/", careStaff.Create)
		staffGroup.GET("/", careStaff.List)
		staffGroup.GET("/:id", careStaff.Get)
		staffGroup.PUT("/:id", careStaff.Update)
		staffGroup.DELETE("/:id", careStaff.Delete)
	}

	// 设备相关接口
	deviceGroup := api.Group("/alexa-devices")
	{
		deviceGroup.GET("/", device.List)
		deviceGroup.PATCH("/:id", device.UpdateStatus)
	}

	// 任务相关接口
	taskGroup := api.Group("/tasks")
	{
		taskGroup.POST("/", task.Create)
		taskGroup.GET("/", task.List)
		taskGroup.GET("/:id", task.Get)
		taskGroup.POST("/:id/assign", task.Assign)
		taskGroup.POST("/:id/respond", task.Respond)
		taskGroup.POST("/:id/complete", task.Complete)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", middleware.HeaderRequestID)
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
