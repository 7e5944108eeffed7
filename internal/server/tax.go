package server

import (
	"net/http"
	"strings"

	taxdomain "github.com/billforge/billforge/internal/tax/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createTaxRequest struct {
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

type updateTaxRequest struct {
	Name       *string          `json:"name"`
	Percentage *decimal.Decimal `json:"percentage"`
}

func (s *Server) CreateTax(c *gin.Context) {
	var req createTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxSvc.Create(c.Request.Context(), taxdomain.CreateTaxRequest{
		Name:       strings.TrimSpace(req.Name),
		Percentage: req.Percentage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTaxes(c *gin.Context) {
	resp, err := s.taxSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"taxes": resp}})
}

func (s *Server) GetTaxByID(c *gin.Context) {
	resp, err := s.taxSvc.GetByID(c.Request.Context(), taxdomain.GetTaxRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTax(c *gin.Context) {
	var req updateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxSvc.Update(c.Request.Context(), taxdomain.UpdateTaxRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		Name:       req.Name,
		Percentage: req.Percentage,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTax(c *gin.Context) {
	err := s.taxSvc.Delete(c.Request.Context(), taxdomain.GetTaxRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isTaxValidationError(err error) bool {
	switch err {
	case taxdomain.ErrInvalidID,
		taxdomain.ErrInvalidName,
		taxdomain.ErrInvalidPercentage:
		return true
	default:
		return false
	}
}
