package server

import (
	"net/http"
	"strings"

	branchdomain "github.com/billforge/billforge/internal/branch/domain"
	"github.com/gin-gonic/gin"
)

type createBranchRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	GSTIN        string `json:"gstin"`
	PhoneCode    string `json:"phone_code"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	SeriesPrefix string `json:"series_prefix"`
}

type updateBranchRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	GSTIN        *string `json:"gstin"`
	PhoneCode    *string `json:"phone_code"`
	Phone        *string `json:"phone"`
	Website      *string `json:"website"`
	SeriesPrefix *string `json:"series_prefix"`
}

func (s *Server) CreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branchSvc.Create(c.Request.Context(), branchdomain.CreateBranchRequest{
		Name:         strings.TrimSpace(req.Name),
		Address:      strings.TrimSpace(req.Address),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
		GSTIN:        strings.TrimSpace(req.GSTIN),
		PhoneCode:    strings.TrimSpace(req.PhoneCode),
		Phone:        strings.TrimSpace(req.Phone),
		Website:      strings.TrimSpace(req.Website),
		SeriesPrefix: strings.TrimSpace(req.SeriesPrefix),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBranches(c *gin.Context) {
	var query struct {
		City      string `form:"city"`
		State     string `form:"state"`
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

	resp, err := s.branchSvc.List(c.Request.Context(), branchdomain.ListBranchRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
		City:      strings.TrimSpace(query.City),
		State:     strings.TrimSpace(query.State),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBranchByID(c *gin.Context) {
	resp, err := s.branchSvc.GetByID(c.Request.Context(), branchdomain.GetBranchRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBranch(c *gin.Context) {
	var req updateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branchSvc.Update(c.Request.Context(), branchdomain.UpdateBranchRequest{
		ID:           strings.TrimSpace(c.Param("id")),
		Name:         req.Name,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		GSTIN:        req.GSTIN,
		PhoneCode:    req.PhoneCode,
		Phone:        req.Phone,
		Website:      req.Website,
		SeriesPrefix: req.SeriesPrefix,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBranch(c *gin.Context) {
	err := s.branchSvc.Delete(c.Request.Context(), branchdomain.GetBranchRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// NextInvoiceNumber consumes and returns the branch's next sequence number.
// Every call advances the counter, so callers should treat the returned
// number as spoken for.
func (s *Server) NextInvoiceNumber(c *gin.Context) {
	number, err := s.branchSvc.NextInvoiceNumber(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"invoice_number": number}})
}

func isBranchValidationError(err error) bool {
	switch err {
	case branchdomain.ErrInvalidID,
		branchdomain.ErrInvalidName,
		branchdomain.ErrInvalidAddress:
		return true
	default:
		return false
	}
}
