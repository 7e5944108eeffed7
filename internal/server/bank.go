package server

import (
	"net/http"
	"strings"

	bankdomain "github.com/billforge/billforge/internal/bank/domain"
	"github.com/gin-gonic/gin"
)

type createBankAccountRequest struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bank_name"`
	BranchName    string `json:"branch_name"`
}

type updateBankAccountRequest struct {
	AccountName   *string `json:"account_name"`
	AccountNumber *string `json:"account_number"`
	IFSC          *string `json:"ifsc"`
	BankName      *string `json:"bank_name"`
	BranchName    *string `json:"branch_name"`
}

func (s *Server) CreateBankAccount(c *gin.Context) {
	var req createBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bankSvc.Create(c.Request.Context(), bankdomain.CreateBankAccountRequest{
		AccountName:   strings.TrimSpace(req.AccountName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		IFSC:          strings.TrimSpace(req.IFSC),
		BankName:      strings.TrimSpace(req.BankName),
		BranchName:    strings.TrimSpace(req.BranchName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBankAccounts(c *gin.Context) {
	var query struct {
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

	resp, err := s.bankSvc.List(c.Request.Context(), bankdomain.ListBankAccountRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBankAccountByID(c *gin.Context) {
	resp, err := s.bankSvc.GetByID(c.Request.Context(), bankdomain.GetBankAccountRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBankAccount(c *gin.Context) {
	var req updateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bankSvc.Update(c.Request.Context(), bankdomain.UpdateBankAccountRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		BankName:      req.BankName,
		BranchName:    req.BranchName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBankAccount(c *gin.Context) {
	err := s.bankSvc.Delete(c.Request.Context(), bankdomain.GetBankAccountRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isBankAccountValidationError(err error) bool {
	switch err {
	case bankdomain.ErrInvalidID,
		bankdomain.ErrInvalidAccountName,
		bankdomain.ErrInvalidAccountNumber:
		return true
	default:
		return false
	}
}
