package handlers

import (
	"errors"
	"net/http"
	"strings"

	"hypoforum/internal/errs"
	"hypoforum/internal/logger"
	"hypoforum/internal/middleware"
	"hypoforum/internal/models"
	"hypoforum/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RenderError writes err as the JSON error body. Storage failures are logged
// with the request logger; their details never reach the client.
func RenderError(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.KindStorage {
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(errs.Response(err))
}

// bindError turns a binding failure into a validation error naming the fields.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, strings.ToLower(fe.Field())+" failed "+fe.Tag())
		}
		return errs.Validation(strings.Join(msgs, "; "))
	}
	return errs.Validation("invalid request body")
}

func currentUser(c *gin.Context) *models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

// paramID reads a positive id path parameter, rendering a 400 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		RenderError(c, errs.Validation(err.Error()))
		return 0, false
	}
	return id, true
}

func page(c *gin.Context) int {
	p := utils.StringToInt(c.DefaultQuery("page", "1"), 1)
	if p < 1 {
		return 1
	}
	return p
}

// Health 存活检查
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
