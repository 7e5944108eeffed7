package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	auditrepo "github.com/billforge/billforge/internal/audit/repository"
	auditservice "github.com/billforge/billforge/internal/audit/service"
	bankrepo "github.com/billforge/billforge/internal/bank/repository"
	bankservice "github.com/billforge/billforge/internal/bank/service"
	branchrepo "github.com/billforge/billforge/internal/branch/repository"
	branchservice "github.com/billforge/billforge/internal/branch/service"
	clientrepo "github.com/billforge/billforge/internal/client/repository"
	clientservice "github.com/billforge/billforge/internal/client/service"
	"github.com/billforge/billforge/internal/clock"
	"github.com/billforge/billforge/internal/config"
	invoicerepo "github.com/billforge/billforge/internal/invoice/repository"
	invoiceservice "github.com/billforge/billforge/internal/invoice/service"
	"github.com/billforge/billforge/internal/migration"
	logorepo "github.com/billforge/billforge/internal/logo/repository"
	logoservice "github.com/billforge/billforge/internal/logo/service"
	obsmetrics "github.com/billforge/billforge/internal/observability/metrics"
	productrepo "github.com/billforge/billforge/internal/product/repository"
	productservice "github.com/billforge/billforge/internal/product/service"
	"github.com/billforge/billforge/internal/sequence"
	taxrepo "github.com/billforge/billforge/internal/tax/repository"
	taxservice "github.com/billforge/billforge/internal/tax/service"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC))
	cfg := config.Config{HTTPAddr: ":0", LogoDir: t.TempDir()}

	clientSvc := clientservice.New(clientservice.Params{DB: db, Log: log, GenID: node, Repo: clientrepo.Provide()})
	branchSvc := branchservice.New(branchservice.Params{DB: db, Log: log, GenID: node, Clock: fake, Repo: branchrepo.Provide()})
	bankSvc := bankservice.New(bankservice.Params{DB: db, Log: log, GenID: node, Repo: bankrepo.Provide()})
	productSvc := productservice.New(productservice.Params{DB: db, Log: log, GenID: node, Repo: productrepo.Provide()})
	taxSvc := taxservice.New(taxservice.Params{DB: db, Log: log, GenID: node, Repo: taxrepo.Provide()})
	auditSvc := auditservice.NewService(auditservice.Params{DB: db, Log: log, GenID: node, Repo: auditrepo.Provide()})
	logoSvc := logoservice.New(logoservice.Params{DB: db, Log: log, GenID: node, Repo: logorepo.Provide(), Cfg: cfg})

	alloc := sequence.NewAllocator(sequence.Params{DB: db, Log: log})
	draft := sequence.NewDraftAllocator(sequence.DraftParams{Alloc: alloc})

	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Repo:       invoicerepo.Provide(),
		DraftAlloc: draft,
		BranchSvc:  branchSvc,
		ProductSvc: productSvc,
		TaxSvc:     taxSvc,
		AuditSvc:   auditSvc,
	})

	reg := prometheus.NewRegistry()
	engine := NewEngine(log, obsmetrics.New(reg), reg)

	return NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		ClientSvc:  clientSvc,
		BranchSvc:  branchSvc,
		BankSvc:    bankSvc,
		ProductSvc: productSvc,
		TaxSvc:     taxSvc,
		InvoiceSvc: invoiceSvc,
		LogoSvc:    logoSvc,
		AuditSvc:   auditSvc,
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Data
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientCRUD(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodPost, "/v1/clients", gin.H{
		"name":  "Acme Traders",
		"email": "billing@acme.example",
		"city":  "Pune",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeData(t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	w = doJSON(t, srv, http.MethodGet, "/v1/clients/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Traders", decodeData(t, w)["name"])

	w = doJSON(t, srv, http.MethodPatch, "/v1/clients/"+id, gin.H{"city": "Mumbai"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mumbai", decodeData(t, w)["city"])

	w = doJSON(t, srv, http.MethodDelete, "/v1/clients/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/v1/clients/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateClientValidationError(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodPost, "/v1/clients", gin.H{"name": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var payload struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "validation_error", payload.Error.Type)
	require.Len(t, payload.Error.Errors, 1)
	assert.Equal(t, "invalid_name", payload.Error.Errors[0].Code)
}

func TestInvoiceFinalizeFlow(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodPost, "/v1/branches", gin.H{
		"name":          "Bengaluru",
		"address":       "100 MG Road",
		"series_prefix": "BLR",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	branchID, _ := decodeData(t, w)["id"].(string)
	require.NotEmpty(t, branchID)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	w = doJSON(t, srv, http.MethodPost, "/v1/invoices", gin.H{
		"invoice_type": "service",
		"client":       node.Generate().String(),
		"branch":       branchID,
		"bank_account": node.Generate().String(),
		"invoice_date": "2024-06-15T00:00:00Z",
		"due_date":     "2024-07-15T00:00:00Z",
		"currency":     "INR",
		"is_final":     true,
		"items": []gin.H{
			{"item_type": "service", "name": "Consulting", "quantity": 2, "unit_cost": "100"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	invoice := decodeData(t, w)
	invoiceID, _ := invoice["id"].(string)
	require.NotEmpty(t, invoiceID)

	// Born final: the draft series is skipped entirely.
	_, hasDraft := invoice["invoice_number"]
	assert.False(t, hasDraft, "unexpected draft number %v", invoice["invoice_number"])

	w = doJSON(t, srv, http.MethodPost, "/v1/invoices/"+invoiceID+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	finalized := decodeData(t, w)
	assert.Equal(t, "BLR202420250001", finalized["final_invoice_number"])

	// Finalize again: same number.
	w = doJSON(t, srv, http.MethodPost, "/v1/invoices/"+invoiceID+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BLR202420250001", decodeData(t, w)["final_invoice_number"])

	// The final view contains the invoice.
	w = doJSON(t, srv, http.MethodGet, "/v1/invoices/final", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	invoices, _ := data["invoices"].([]any)
	assert.Len(t, invoices, 1)

	// Same view through the list filter.
	w = doJSON(t, srv, http.MethodGet, "/v1/invoices?final=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeData(t, w)
	invoices, _ = data["invoices"].([]any)
	assert.Len(t, invoices, 1)
}

func TestNextInvoiceNumberEndpoint(t *testing.T) {
	srv := setupServer(t)

	w := doJSON(t, srv, http.MethodPost, "/v1/branches", gin.H{
		"name":          "Delhi",
		"address":       "1 Connaught Place",
		"series_prefix": "DEL",
	})
	require.Equal(t, http.StatusOK, w.Code)
	branchID, _ := decodeData(t, w)["id"].(string)

	w = doJSON(t, srv, http.MethodGet, "/v1/branches/"+branchID+"/next-invoice-number", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "DEL202420250001", decodeData(t, w)["invoice_number"])

	w = doJSON(t, srv, http.MethodGet, "/v1/branches/"+branchID+"/next-invoice-number", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DEL202420250002", decodeData(t, w)["invoice_number"])
}
