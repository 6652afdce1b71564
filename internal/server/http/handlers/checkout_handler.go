package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/rigshop/internal/server/http/dto"
)

// CheckoutHandler accepts checkouts from customers and guests.
type CheckoutHandler struct {
	facade CheckoutFacade
	errs   *ErrorWriter
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(facade CheckoutFacade, errs *ErrorWriter) *CheckoutHandler {
	return &CheckoutHandler{facade: facade, errs: errs}
}

// Checkout handles POST /api/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.errs.bindJSON(c, &req) {
		return
	}
	order, err := h.facade.Checkout(c.Request.Context(), CurrentActor(c), req.Input())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
