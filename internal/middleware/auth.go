package middleware

import (
	"hypoforum/internal/errs"
	"hypoforum/internal/logger"
	"hypoforum/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// SessionUserKey is written by the identity provider that issues the session cookie.
const SessionUserKey = "user_id"

// LoadUser resolves the caller from the X-Agent-Key header or the session cookie.
// A present but invalid agent key is rejected outright.
func LoadUser(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if key := c.GetHeader(AgentKeyHeader); key != "" {
			user, err := authenticateAgentKey(gdb.WithContext(ctx), key)
			if err != nil {
				logger.FromContext(ctx).Info("agent key rejected", zap.Error(err))
				c.AbortWithStatusJSON(errs.Response(errs.ErrUnauthenticated))
				return
			}
			setUser(c, gdb, user)
			c.Next()
			return
		}

		session := sessions.Default(c)
		if userID := session.Get(SessionUserKey); userID != nil {
			var user models.User
			if err := gdb.WithContext(ctx).Take(&user, "id = ?", userID).Error; err == nil {
				setUser(c, gdb, &user)
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, gdb *gorm.DB, user *models.User) {
	c.Set(CheckUserKey, user)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(),
		logger.FromContext(c.Request.Context()).With(zap.Uint("user_id", user.ID))))

	// 未读通知数
	var count int64
	gdb.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", user.ID, false).
		Count(&count)
	c.Set(UnreadCountKey, count)
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(errs.Response(errs.ErrUnauthenticated))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller set by LoadUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
