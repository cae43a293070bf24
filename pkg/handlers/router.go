package handlers

import (
	"github.com/gin-gonic/gin"
	"video-sharing/pkg/auth"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20
	r.Use(auth.Middleware(h.tokens))

	r.GET("/healthz", h.Health)

	a := r.Group("/auth")
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
	a.GET("/session", h.Session)

	v := r.Group("/videos")
	v.GET("", h.ListVideos)
	v.POST("", h.CreateVideo)
	v.GET("/mine", h.ListMyVideos)
	v.GET("/:id", h.GetVideo)
	v.PUT("/:id", h.UpdateVideo)
	v.DELETE("/:id", h.DeleteVideo)

	u := r.Group("/uploads")
	u.POST("", h.Upload)
	u.POST("/sign", h.SignUpload)

	return r
}
