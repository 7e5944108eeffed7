package server

import (
	"net/http"
	"strings"
	"time"

	invoicedomain "github.com/billforge/billforge/internal/invoice/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type invoiceItemInput struct {
	ItemType string           `json:"item_type"`
	Product  string           `json:"product"`
	Name     string           `json:"name"`
	Quantity int64            `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

type createInvoiceRequest struct {
	InvoiceType   string             `json:"invoice_type"`
	Client        string             `json:"client"`
	Branch        string             `json:"branch"`
	BankAccount   string             `json:"bank_account"`
	InvoiceDate   time.Time          `json:"invoice_date"`
	DueDate       time.Time          `json:"due_date"`
	Currency      string             `json:"currency"`
	PaymentTerms  string             `json:"payment_terms"`
	TaxOption     string             `json:"tax_option"`
	TaxName       string             `json:"tax_name"`
	TaxRate       *decimal.Decimal   `json:"tax_rate"`
	Discount      *decimal.Decimal   `json:"discount"`
	AmountPaid    *decimal.Decimal   `json:"amount_paid"`
	IsFinal       bool               `json:"is_final"`
	Items         []invoiceItemInput `json:"items"`
}

type updateInvoiceRequest struct {
	InvoiceType  *string             `json:"invoice_type"`
	Client       *string             `json:"client"`
	Branch       *string             `json:"branch"`
	BankAccount  *string             `json:"bank_account"`
	InvoiceDate  *time.Time          `json:"invoice_date"`
	DueDate      *time.Time          `json:"due_date"`
	Currency     *string             `json:"currency"`
	PaymentTerms *string             `json:"payment_terms"`
	TaxOption    *string             `json:"tax_option"`
	TaxName      *string             `json:"tax_name"`
	TaxRate      *decimal.Decimal    `json:"tax_rate"`
	Discount     *decimal.Decimal    `json:"discount"`
	AmountPaid   *decimal.Decimal    `json:"amount_paid"`
	IsFinal      *bool               `json:"is_final"`
	Items        *[]invoiceItemInput `json:"items"`
}

func toItemInputs(items []invoiceItemInput) []invoicedomain.ItemInput {
	inputs := make([]invoicedomain.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, invoicedomain.ItemInput{
			ItemType:  strings.TrimSpace(item.ItemType),
			ProductID: strings.TrimSpace(item.Product),
			Name:      strings.TrimSpace(item.Name),
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}
	return inputs
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		InvoiceType:   strings.TrimSpace(req.InvoiceType),
		ClientID:      strings.TrimSpace(req.Client),
		BranchID:      strings.TrimSpace(req.Branch),
		BankAccountID: strings.TrimSpace(req.BankAccount),
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		Currency:      strings.TrimSpace(req.Currency),
		PaymentTerms:  strings.TrimSpace(req.PaymentTerms),
		TaxOption:     strings.TrimSpace(req.TaxOption),
		TaxName:       strings.TrimSpace(req.TaxName),
		TaxRate:       req.TaxRate,
		Discount:      req.Discount,
		AmountPaid:    req.AmountPaid,
		IsFinal:       req.IsFinal,
		Items:         toItemInputs(req.Items),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listInvoices(c *gin.Context, finalOnly bool) {
	var query struct {
		Client    string `form:"client"`
		Branch    string `form:"branch"`
		Final     string `form:"final"`
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

	final, err := parseOptionalBool(query.Final)
	if err != nil {
		AbortWithError(c, newValidationError("final", "invalid_final", "invalid final filter"))
		return
	}
	if final != nil && *final {
		finalOnly = true
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  pageSize,
		ClientID:  strings.TrimSpace(query.Client),
		BranchID:  strings.TrimSpace(query.Branch),
		FinalOnly: finalOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	s.listInvoices(c, false)
}

// ListFinalInvoices serves the read-only view of finalized invoices.
func (s *Server) ListFinalInvoices(c *gin.Context) {
	s.listInvoices(c, true)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := invoicedomain.UpdateInvoiceRequest{
		ID:            strings.TrimSpace(c.Param("id")),
		InvoiceType:   req.InvoiceType,
		ClientID:      req.Client,
		BranchID:      req.Branch,
		BankAccountID: req.BankAccount,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		Currency:      req.Currency,
		PaymentTerms:  req.PaymentTerms,
		TaxOption:     req.TaxOption,
		TaxName:       req.TaxName,
		TaxRate:       req.TaxRate,
		Discount:      req.Discount,
		AmountPaid:    req.AmountPaid,
		IsFinal:       req.IsFinal,
	}
	if req.Items != nil {
		items := toItemInputs(*req.Items)
		update.Items = &items
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	err := s.invoiceSvc.Delete(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FinalizeInvoice issues the final sequence number. Safe to call repeatedly.
func (s *Server) FinalizeInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GenerateFinalNumber(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidID,
		invoicedomain.ErrInvalidInvoiceType,
		invoicedomain.ErrInvalidClient,
		invoicedomain.ErrInvalidBranch,
		invoicedomain.ErrInvalidBankAccount,
		invoicedomain.ErrInvalidCurrency,
		invoicedomain.ErrInvalidTaxOption,
		invoicedomain.ErrInvalidTaxRate,
		invoicedomain.ErrInvalidDiscount,
		invoicedomain.ErrInvalidAmountPaid,
		invoicedomain.ErrInvalidItemType,
		invoicedomain.ErrItemNameRequired,
		invoicedomain.ErrItemProductMissing,
		invoicedomain.ErrInvalidQuantity,
		invoicedomain.ErrInvalidUnitCost:
		return true
	default:
		return false
	}
}
