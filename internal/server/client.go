package server

import (
	"net/http"
	"strings"

	clientdomain "github.com/billforge/billforge/internal/client/domain"
	"github.com/gin-gonic/gin"
)

type createClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	GSTIN   string `json:"gstin"`
	Phone   string `json:"phone"`
}

type updateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	GSTIN   *string `json:"gstin"`
	Phone   *string `json:"phone"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateClientRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		GSTIN:   strings.TrimSpace(req.GSTIN),
		Phone:   strings.TrimSpace(req.Phone),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClients(c *gin.Context) {
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

	resp, err := s.clientSvc.List(c.Request.Context(), clientdomain.ListClientRequest{
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

func (s *Server) GetClientByID(c *gin.Context) {
	resp, err := s.clientSvc.GetByID(c.Request.Context(), clientdomain.GetClientRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateClient(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Update(c.Request.Context(), clientdomain.UpdateClientRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		GSTIN:   req.GSTIN,
		Phone:   req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteClient(c *gin.Context) {
	err := s.clientSvc.Delete(c.Request.Context(), clientdomain.GetClientRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isClientValidationError(err error) bool {
	switch err {
	case clientdomain.ErrInvalidID,
		clientdomain.ErrInvalidName:
		return true
	default:
		return false
	}
}
