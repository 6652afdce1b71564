package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/rigshop/internal/domain/model"
)

// CatalogHandler serves the parts catalog.
type CatalogHandler struct {
	facade CatalogFacade
	errs   *ErrorWriter
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade, errs *ErrorWriter) *CatalogHandler {
	return &CatalogHandler{facade: facade, errs: errs}
}

// List handles GET /api/components?type=.
func (h *CatalogHandler) List(c *gin.Context) {
	components, err := h.facade.Components(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, components)
}

// Get handles GET /api/components/:id.
func (h *CatalogHandler) Get(c *gin.Context) {
	component, err := h.facade.Component(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, component)
}

// Upsert handles PUT /api/components/:id.
func (h *CatalogHandler) Upsert(c *gin.Context) {
	var req model.CatalogComponent
	if !h.errs.bindJSON(c, &req) {
		return
	}
	req.ID = c.Param("id")

	component, err := h.facade.UpsertComponent(c.Request.Context(), CurrentActor(c), req)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, component)
}
