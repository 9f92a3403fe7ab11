package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookdomain "github.com/smallbiznis/zoonova/internal/book/domain"
)

type bookListQuery struct {
	Search   string `form:"search"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
	InStock  string `form:"in_stock"`
	Featured string `form:"featured"`
	SortBy   string `form:"sort_by"`
	OrderBy  string `form:"order_by"`
}

func (s *Server) ListBooks(c *gin.Context) {
	s.listBooks(c, false)
}

func (s *Server) AdminListBooks(c *gin.Context) {
	s.listBooks(c, true)
}

func (s *Server) listBooks(c *gin.Context, includeInactive bool) {
	var query bookListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	minPrice, err := parseOptionalInt64(query.MinPrice)
	if err != nil {
		AbortWithError(c, newValidationError("min_price", "invalid_min_price", "invalid min_price"))
		return
	}
	maxPrice, err := parseOptionalInt64(query.MaxPrice)
	if err != nil {
		AbortWithError(c, newValidationError("max_price", "invalid_max_price", "invalid max_price"))
		return
	}
	inStock, err := parseOptionalBool(query.InStock)
	if err != nil {
		AbortWithError(c, newValidationError("in_stock", "invalid_in_stock", "invalid in_stock"))
		return
	}
	featured, err := parseOptionalBool(query.Featured)
	if err != nil {
		AbortWithError(c, newValidationError("featured", "invalid_featured", "invalid featured"))
		return
	}

	resp, err := s.bookSvc.List(c.Request.Context(), bookdomain.ListRequest{
		Search:          strings.TrimSpace(query.Search),
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		InStock:         inStock,
		Featured:        featured,
		IncludeInactive: includeInactive,
		SortBy:          strings.TrimSpace(query.SortBy),
		OrderBy:         strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ViewBook is the storefront detail page and counts the visit.
func (s *Server) ViewBook(c *gin.Context) {
	resp, err := s.bookSvc.View(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBook(c *gin.Context) {
	resp, err := s.bookSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateBook(c *gin.Context) {
	var req bookdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateBook(c *gin.Context) {
	var req bookdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.bookSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBook(c *gin.Context) {
	if err := s.bookSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type updateStockRequest struct {
	Quantity *int `json:"quantity"`
}

func (s *Server) UpdateBookStock(c *gin.Context) {
	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Quantity == nil {
		AbortWithError(c, newValidationError("quantity", "required", "quantity is required"))
		return
	}

	resp, err := s.bookSvc.UpdateStock(c.Request.Context(), strings.TrimSpace(c.Param("id")), *req.Quantity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleBookFeatured(c *gin.Context) {
	resp, err := s.bookSvc.ToggleFeatured(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleBookActive(c *gin.Context) {
	resp, err := s.bookSvc.ToggleActive(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BookOrderStatus(c *gin.Context) {
	resp, err := s.bookSvc.OrderStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBookImages(c *gin.Context) {
	resp, err := s.bookSvc.ListImages(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddBookImage(c *gin.Context) {
	var req bookdomain.AddImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.BookID = strings.TrimSpace(c.Param("id"))

	resp, err := s.bookSvc.AddImage(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) DeleteBookImage(c *gin.Context) {
	err := s.bookSvc.DeleteImage(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("image_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) SetBookMainCover(c *gin.Context) {
	resp, err := s.bookSvc.SetMainCover(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("image_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
