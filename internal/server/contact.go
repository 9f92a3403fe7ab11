package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
)

func (s *Server) CreateContactMessage(c *gin.Context) {
	var req contactdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contactSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListContactMessages(c *gin.Context) {
	var query struct {
		IsRead string `form:"is_read"`
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isRead, err := parseOptionalBool(query.IsRead)
	if err != nil {
		AbortWithError(c, newValidationError("is_read", "invalid_is_read", "invalid is_read"))
		return
	}

	resp, err := s.contactSvc.List(c.Request.Context(), contactdomain.ListRequest{
		IsRead: isRead,
		Search: strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContactMessage(c *gin.Context) {
	resp, err := s.contactSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkContactRead(c *gin.Context) {
	resp, err := s.contactSvc.MarkRead(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkContactUnread(c *gin.Context) {
	resp, err := s.contactSvc.MarkUnread(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type markRepliedRequest struct {
	AdminNotes string `json:"admin_notes"`
}

func (s *Server) MarkContactReplied(c *gin.Context) {
	var req markRepliedRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	resp, err := s.contactSvc.MarkReplied(c.Request.Context(), strings.TrimSpace(c.Param("id")), req.AdminNotes)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type bulkMarkReadRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) BulkMarkContactRead(c *gin.Context) {
	var req bulkMarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.contactSvc.BulkMarkRead(c.Request.Context(), req.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
}

func (s *Server) ContactStatistics(c *gin.Context) {
	resp, err := s.contactSvc.Statistics(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
