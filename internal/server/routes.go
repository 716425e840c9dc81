package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

func (s *Server) SetupRoutes(prefix string, target *url.URL, webDir string) {
	s.ginEngine.Use(s.proxyMiddleware(prefix, target))

	if webDir != "" {
		s.ginEngine.Use(serveStatic(webDir))
	}

	s.ginEngine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})
}
