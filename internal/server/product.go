package server

import (
	"net/http"
	"strings"

	productdomain "github.com/billforge/billforge/internal/product/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name     string          `json:"name"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type updateProductRequest struct {
	Name     *string          `json:"name"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateProductRequest{
		Name:     strings.TrimSpace(req.Name),
		UnitCost: req.UnitCost,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Name      string `form:"name"`
		PageToken string `form:"page_token"`
		PageSize  string `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pageSize, err := parsePageSize(query.PageSize)
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListProductRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
		Name:      strings.TrimSpace(query.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.GetByID(c.Request.Context(), productdomain.GetProductRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), productdomain.UpdateProductRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		Name:     req.Name,
		UnitCost: req.UnitCost,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	err := s.productSvc.Delete(c.Request.Context(), productdomain.GetProductRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidID,
		productdomain.ErrInvalidName,
		productdomain.ErrInvalidUnitCost:
		return true
	default:
		return false
	}
}
