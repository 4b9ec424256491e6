package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleStatus lists every registered run's current status.
func (s *Server) handleStatus(c *gin.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()

	statuses := make([]RunStatus, 0, len(s.runs))
	for name, r := range s.runs {
		statuses = append(statuses, s.statusOf(name, r))
	}
	c.JSON(http.StatusOK, gin.H{"runs": statuses})
}

// handleRun returns the status of a single named run.
func (s *Server) handleRun(c *gin.Context) {
	name := c.Param("name")

	s.lock.Lock()
	defer s.lock.Unlock()

	r, ok := s.runs[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run: " + name})
		return
	}
	c.JSON(http.StatusOK, s.statusOf(name, r))
}
