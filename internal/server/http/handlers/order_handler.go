package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/server/http/dto"
)

const dateLayout = "2006-01-02"

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
	errs   *ErrorWriter
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, errs *ErrorWriter) *OrderHandler {
	return &OrderHandler{facade: facade, errs: errs}
}

// List handles GET /api/orders?status=&from=&to=&limit=.
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := parseOrderFilter(c)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	orders, err := h.facade.Orders(c.Request.Context(), CurrentActor(c), filter)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), CurrentActor(c), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Invoice handles GET /api/orders/:id/invoice.
func (h *OrderHandler) Invoice(c *gin.Context) {
	invoice, err := h.facade.Invoice(c.Request.Context(), CurrentActor(c), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Status handles PATCH /api/orders/:id/status.
func (h *OrderHandler) Status(c *gin.Context) {
	var req dto.StatusRequest
	if !h.errs.bindJSON(c, &req) {
		return
	}
	order, err := h.facade.AdvanceOrder(c.Request.Context(), CurrentActor(c), c.Param("id"), req.BuildStatus)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteOrder(c.Request.Context(), CurrentActor(c), c.Param("id")); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseOrderFilter(c *gin.Context) (model.OrderFilter, error) {
	verr := &domainErrors.ValidationError{}
	var filter model.OrderFilter

	if raw := c.Query("status"); raw != "" {
		status, ok := model.ParseBuildStatus(raw)
		if !ok {
			verr.Add("status", "unknown status "+raw)
		}
		filter.Status = status
	}
	filter.From = parseTime(c.Query("from"), "from", verr)
	filter.To = parseTime(c.Query("to"), "to", verr)
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			verr.Add("limit", "limit must be a positive integer")
		}
		filter.Limit = limit
	}
	return filter, verr.Err()
}

// parseTime accepts RFC 3339 timestamps and plain dates.
func parseTime(raw, field string, verr *domainErrors.ValidationError) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t
	}
	verr.Add(field, "expected RFC 3339 timestamp or YYYY-MM-DD date")
	return time.Time{}
}
