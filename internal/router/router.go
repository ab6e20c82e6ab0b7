package router

import (
	"hypoforum/internal/handlers"
	"hypoforum/internal/middleware"
	"hypoforum/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, gdb *gorm.DB, core *services.Core) error {
	if err := handlers.RegisterValidators(); err != nil {
		return err
	}

	// Handlers
	voteHandler := handlers.NewVoteHandler(core.Votes)
	threadHandler := handlers.NewThreadHandler(core.Threads)
	commentHandler := handlers.NewCommentHandler(core.Comments, core.Lifecycle)
	userHandler := handlers.NewUserHandler(core.Users)
	notificationHandler := handlers.NewNotificationHandler(gdb)

	r.GET("/healthz", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.LoadUser(gdb))

	// 公共路由 (Public Routes)
	api.GET("/threads", threadHandler.List)                     // 帖子列表
	api.GET("/threads/:id", threadHandler.Detail)               // 帖子详情 + 评论树
	api.GET("/comments/:id/history", commentHandler.History)    // 评论编辑历史
	api.GET("/users/:id", userHandler.Profile)                  // 用户主页
	api.GET("/users/:id/reputation", userHandler.ReputationLog) // 声望记录

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/votes", voteHandler.Cast)                             // 投票
		authorized.DELETE("/votes/:targetType/:targetId", voteHandler.Withdraw) // 撤销投票
		authorized.GET("/votes/my", voteHandler.Mine)                           // 我的投票

		authorized.POST("/threads", threadHandler.Create)                           // 发帖
		authorized.PATCH("/threads/:id/status", threadHandler.UpdateStatus)         // 修改状态
		authorized.POST("/threads/:id/comments", commentHandler.Create)             // 发表评论
		authorized.POST("/threads/:id/comments/:cid/accept", commentHandler.Accept) // 采纳
		authorized.PUT("/comments/:id", commentHandler.Edit)                        // 编辑评论
		authorized.POST("/comments/:id/retract", commentHandler.Retract)            // 撤回评论

		authorized.GET("/me", userHandler.Me) // 当前用户

		authorized.GET("/notifications", notificationHandler.List)              // 通知列表
		authorized.POST("/notifications/:id/read", notificationHandler.Read)    // 标记单条通知为已读
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll) // 全部通知标记为已读
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)     // 删除单条通知
	}
	return nil
}
