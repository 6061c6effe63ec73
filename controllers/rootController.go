package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello Hatdog!"})
}

func welcomeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello World!"})
}

// SetupRootRoute sets up the unauthenticated greeting routes
func SetupRootRoute(router gin.IRoutes) {
	router.GET("/", rootHandler)
	router.GET("/welcome", welcomeHandler)
}
