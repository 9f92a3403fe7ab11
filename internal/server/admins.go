package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/zoonova/internal/auth/domain"
)

func (s *Server) ListAdmins(c *gin.Context) {
	var query struct {
		IsActive    string `form:"is_active"`
		IsSuperuser string `form:"is_superuser"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isActive, err := parseOptionalBool(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}
	isSuperuser, err := parseOptionalBool(query.IsSuperuser)
	if err != nil {
		AbortWithError(c, newValidationError("is_superuser", "invalid_is_superuser", "invalid is_superuser"))
		return
	}

	resp, err := s.authsvc.List(c.Request.Context(), authdomain.ListRequest{
		IsActive:    isActive,
		IsSuperuser: isSuperuser,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateAdmin(c *gin.Context) {
	var req authdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ToggleAdminActive(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.authsvc.ToggleActive(c.Request.Context(), identity.AdminID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
