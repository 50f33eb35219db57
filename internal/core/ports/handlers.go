package ports

import (
	"github.com/gin-gonic/gin"
)

type HTTPHandler interface {
	Health(c *gin.Context)
	GetStatus(c *gin.Context)
	UpdatePresence(c *gin.Context)
	ClearPresence(c *gin.Context)
	Tick(c *gin.Context)
}
