package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alrehman/poultrybooks/internal/domain/models"
	"github.com/alrehman/poultrybooks/internal/service/ledger"
	"github.com/alrehman/poultrybooks/internal/service/reporting"
)

// BooksHandler exposes the books over HTTP: collection CRUD, reports and the
// bulk import/export/reset operations.
type BooksHandler struct {
	books   *ledger.Service
	reports *reporting.Service
	logger  *zap.Logger
}

// NewBooksHandler constructs the HTTP handler adapter for the books.
func NewBooksHandler(books *ledger.Service, reports *reporting.Service, logger *zap.Logger) *BooksHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BooksHandler{books: books, reports: reports, logger: logger}
}

// writeError maps service errors onto HTTP statuses.
func (h *BooksHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, reporting.ErrUnknownCustomer):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, models.ErrInvalidImport):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// periodWindow reads the from/to query range; an open edge covers all of
// history on that side.
func periodWindow(c *gin.Context) (string, string) {
	from := c.Query("from")
	if from == "" {
		from = "0000-01-01"
	}
	to := c.Query("to")
	if to == "" {
		to = "9999-12-31"
	}
	return from, to
}

// --- Customers ---

// ListCustomers returns every customer.
func (h *BooksHandler) ListCustomers(c *gin.Context) {
	c.JSON(http.StatusOK, h.books.Snapshot().Customers)
}

// CreateCustomer registers a customer.
func (h *BooksHandler) CreateCustomer(c *gin.Context) {
	var draft ledger.CustomerDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	customer, err := h.books.AddCustomer(c.Request.Context(), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer rewrites a customer.
func (h *BooksHandler) UpdateCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var draft ledger.CustomerDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	customer, err := h.books.UpdateCustomer(c.Request.Context(), id, draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer and everything that cascades from it.
func (h *BooksHandler) DeleteCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.books.DeleteCustomer(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Farms ---

// ListFarms returns every farm.
func (h *BooksHandler) ListFarms(c *gin.Context) {
	c.JSON(http.StatusOK, h.books.Snapshot().Farms)
}

// CreateFarm registers a farm.
func (h *BooksHandler) CreateFarm(c *gin.Context) {
	var draft ledger.FarmDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	farm, err := h.books.AddFarm(c.Request.Context(), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, farm)
}

// UpdateFarm rewrites a farm.
func (h *BooksHandler) UpdateFarm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var draft ledger.FarmDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	farm, err := h.books.UpdateFarm(c.Request.Context(), id, draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, farm)
}

// DeleteFarm removes a farm, its sales and their vouchers.
func (h *BooksHandler) DeleteFarm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.books.DeleteFarm(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Accounts ---

// ListAccounts returns every account with its live balance.
func (h *BooksHandler) ListAccounts(c *gin.Context) {
	from, to := periodWindow(c)
	c.JSON(http.StatusOK, h.reports.AccountStatementReport(from, to))
}

// CreateAccount registers an account.
func (h *BooksHandler) CreateAccount(c *gin.Context) {
	var draft ledger.AccountDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	account, err := h.books.AddAccount(c.Request.Context(), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// UpdateAccount rewrites an account.
func (h *BooksHandler) UpdateAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var draft ledger.AccountDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	account, err := h.books.UpdateAccount(c.Request.Context(), id, draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// DeleteAccount removes an account.
func (h *BooksHandler) DeleteAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.books.DeleteAccount(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Sales ---

// ListSales returns every sale.
func (h *BooksHandler) ListSales(c *gin.Context) {
	c.JSON(http.StatusOK, h.books.Snapshot().Sales)
}

// CreateSale books a sale and its paired voucher.
func (h *BooksHandler) CreateSale(c *gin.Context) {
	var draft ledger.SaleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sale, voucher, err := h.books.RecordSale(c.Request.Context(), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sale": sale, "voucher": voucher})
}

// UpdateSale rewrites a sale and re-syncs its voucher.
func (h *BooksHandler) UpdateSale(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var draft ledger.SaleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sale, err := h.books.UpdateSale(c.Request.Context(), id, draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// DeleteSale removes a sale and its voucher.
func (h *BooksHandler) DeleteSale(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.books.DeleteSale(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Receivables ---

// ListReceivables returns every receipt.
func (h *BooksHandler) ListReceivables(c *gin.Context) {
	c.JSON(http.StatusOK, h.books.Snapshot().Receivables)
}

// CreateReceivable books a receipt and its paired voucher.
func (h *BooksHandler) CreateReceivable(c *gin.Context) {
	var draft ledger.ReceivableDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	rec, voucher, err := h.books.RecordReceivable(c.Request.Context(), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"receivable": rec, "voucher": voucher})
}

// UpdateReceivable rewrites a receipt and re-syncs its voucher.
func (h *BooksHandler) UpdateReceivable(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var draft ledger.ReceivableDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	rec, err := h.books.UpdateReceivable(c.Request.Context(), id, draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteReceivable removes a receipt and its voucher.
func (h *BooksHandler) DeleteReceivable(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.books.DeleteReceivable(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListVouchers returns the derived journal.
func (h *BooksHandler) ListVouchers(c *gin.Context) {
	c.JSON(http.StatusOK, h.books.Snapshot().Vouchers)
}

// --- Reports ---

// SalesReport serves the period sales summary.
func (h *BooksHandler) SalesReport(c *gin.Context) {
	from, to := periodWindow(c)
	c.JSON(http.StatusOK, h.reports.SalesSummaryReport(from, to))
}

// LedgerReport serves one customer's ledger with running balance.
func (h *BooksHandler) LedgerReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("customerId"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return
	}
	from, to := periodWindow(c)
	report, lerr := h.reports.CustomerLedgerReport(id, from, to)
	if lerr != nil {
		h.writeError(c, lerr)
		return
	}
	c.JSON(http.StatusOK, report)
}

// FarmsReport serves per-farm period performance.
func (h *BooksHandler) FarmsReport(c *gin.Context) {
	farmID := 0
	if raw := c.Query("farmId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid farm id"})
			return
		}
		farmID = id
	}
	from, to := periodWindow(c)
	c.JSON(http.StatusOK, h.reports.FarmPerformanceReport(farmID, from, to))
}

// AgingReport serves the receivables aging view. asOf defaults to today.
func (h *BooksHandler) AgingReport(c *gin.Context) {
	asOf := c.Query("asOf")
	if asOf != "" && !models.ValidDate(asOf) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be YYYY-MM-DD"})
		return
	}
	c.JSON(http.StatusOK, h.reports.AgingReport(asOf))
}

// Dashboard serves the headline numbers and chart series.
func (h *BooksHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.reports.DashboardReport())
}

// --- Bulk operations ---

// Export streams the whole books as a dated JSON backup.
func (h *BooksHandler) Export(c *gin.Context) {
	st := h.books.Snapshot()
	payload, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		h.writeError(c, err)
		return
	}

	filename := fmt.Sprintf("poultrybooks-backup-%s.json", time.Now().UTC().Format(models.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", payload)
}

// Import replaces the books with an uploaded backup document.
func (h *BooksHandler) Import(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	st, err := h.books.Import(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"customers":   len(st.Customers),
		"farms":       len(st.Farms),
		"accounts":    len(st.Accounts),
		"sales":       len(st.Sales),
		"receivables": len(st.Receivables),
		"vouchers":    len(st.Vouchers),
	})
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// Reset wipes the books after an explicit confirmation.
func (h *BooksHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reset requires confirm=true"})
		return
	}
	h.books.Reset(c.Request.Context())
	c.Status(http.StatusNoContent)
}
