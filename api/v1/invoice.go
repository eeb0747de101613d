package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/services"
)

// InvoiceController handles invoices raised against an assignment
type InvoiceController struct {
	invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoices: invoices}
}

func (ic *InvoiceController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/assignments/:id/invoices", ic.ListInvoices)
	router.POST("/assignments/:id/invoices", ic.CreateInvoice)

	invoices := router.Group("/invoices")
	{
		invoices.PUT("/:id", ic.UpdateInvoice)
		invoices.DELETE("/:id", ic.DeleteInvoice)
		invoices.POST("/:id/mark-paid", ic.MarkPaid)
	}
}

func (ic *InvoiceController) ListInvoices(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	invoices, err := ic.invoices.ListInvoices(c.Request.Context(), caps, c.Param("id"))
	if err != nil {
		queryError(c, err)
		return
	}
	success(c, http.StatusOK, invoices)
}

func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.InvoiceRequest
	if !bind(c, &req) {
		return
	}
	invoice, err := ic.invoices.CreateInvoice(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusCreated, invoice)
}

func (ic *InvoiceController) UpdateInvoice(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.InvoiceRequest
	if !bind(c, &req) {
		return
	}
	invoice, err := ic.invoices.UpdateInvoice(c.Request.Context(), caps, c.Param("id"), req)
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, invoice)
}

// MarkPaid sets the invoice to Paid. The body is optional.
func (ic *InvoiceController) MarkPaid(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	var req dto.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":       "error",
			"message":      "Invalid request body",
			"error":        err.Error(),
			"notification": gin.H{"variant": "destructive"},
		})
		return
	}

	invoice, err := ic.invoices.MarkPaid(c.Request.Context(), caps, c.Param("id"), req.PaymentDate.TimePtr())
	if err != nil {
		mutationError(c, err)
		return
	}
	success(c, http.StatusOK, invoice)
}

func (ic *InvoiceController) DeleteInvoice(c *gin.Context) {
	caps, ok := capabilities(c)
	if !ok {
		return
	}
	if err := ic.invoices.DeleteInvoice(c.Request.Context(), caps, c.Param("id")); err != nil {
		mutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Invoice deleted successfully"})
}
