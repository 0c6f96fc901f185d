package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorEnvelope{
		Error: models.APIError{Message: message, Code: code},
	})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
