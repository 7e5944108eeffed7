package server

import (
	"net/http"
	"strings"

	invoicedomain "github.com/billforge/billforge/internal/invoice/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type updateInvoiceItemRequest struct {
	ItemType *string          `json:"item_type"`
	Product  *string          `json:"product"`
	Name     *string          `json:"name"`
	Quantity *int64           `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

func (s *Server) CreateInvoiceItem(c *gin.Context) {
	var req invoiceItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.CreateItem(c.Request.Context(), invoicedomain.CreateItemRequest{
		InvoiceID: strings.TrimSpace(c.Param("id")),
		Item: invoicedomain.ItemInput{
			ItemType:  strings.TrimSpace(req.ItemType),
			ProductID: strings.TrimSpace(req.Product),
			Name:      strings.TrimSpace(req.Name),
			Quantity:  req.Quantity,
			UnitCost:  req.UnitCost,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoiceItem(c *gin.Context) {
	var req updateInvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateItem(c.Request.Context(), invoicedomain.UpdateItemRequest{
		ID:       strings.TrimSpace(c.Param("id")),
		ItemType: req.ItemType,
		Product:  req.Product,
		Name:     req.Name,
		Quantity: req.Quantity,
		UnitCost: req.UnitCost,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoiceItem(c *gin.Context) {
	err := s.invoiceSvc.DeleteItem(c.Request.Context(), invoicedomain.GetItemRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
