package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/server/http/dto"
	"github.com/polkiloo/rigshop/internal/usecase"
)

// BuildHandler manages saved build endpoints.
type BuildHandler struct {
	facade BuildFacade
	errs   *ErrorWriter
}

// NewBuildHandler constructs BuildHandler.
func NewBuildHandler(facade BuildFacade, errs *ErrorWriter) *BuildHandler {
	return &BuildHandler{facade: facade, errs: errs}
}

// Create handles POST /api/builds.
func (h *BuildHandler) Create(c *gin.Context) {
	var req dto.BuildRequest
	if !h.errs.bindJSON(c, &req) {
		return
	}
	build, err := h.facade.CreateBuild(c.Request.Context(), CurrentActor(c), buildInput(req))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, build)
}

// Mine handles GET /api/builds.
func (h *BuildHandler) Mine(c *gin.Context) {
	builds, err := h.facade.MyBuilds(c.Request.Context(), CurrentActor(c))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, builds)
}

// Published handles GET /api/builds/published.
func (h *BuildHandler) Published(c *gin.Context) {
	builds, err := h.facade.PublishedBuilds(c.Request.Context())
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, builds)
}

// Get handles GET /api/builds/:id.
func (h *BuildHandler) Get(c *gin.Context) {
	build, err := h.facade.Build(c.Request.Context(), CurrentActor(c), c.Param("id"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, build)
}

// Update handles PUT /api/builds/:id.
func (h *BuildHandler) Update(c *gin.Context) {
	var req dto.BuildRequest
	if !h.errs.bindJSON(c, &req) {
		return
	}
	build, err := h.facade.UpdateBuild(c.Request.Context(), CurrentActor(c), c.Param("id"), buildInput(req))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, build)
}

// Publish handles PATCH /api/builds/:id/publish.
func (h *BuildHandler) Publish(c *gin.Context) {
	var req dto.PublishRequest
	if !h.errs.bindJSON(c, &req) {
		return
	}
	if req.Published == nil {
		h.errs.Write(c, domainErrors.NewValidationError("published", "published is required"))
		return
	}
	build, err := h.facade.PublishBuild(c.Request.Context(), CurrentActor(c), c.Param("id"), *req.Published)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, build)
}

// Delete handles DELETE /api/builds/:id.
func (h *BuildHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteBuild(c.Request.Context(), CurrentActor(c), c.Param("id")); err != nil {
		h.errs.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func buildInput(req dto.BuildRequest) usecase.BuildInput {
	return usecase.BuildInput{
		Name:       req.Name,
		Image:      req.Image,
		Components: req.Components,
		Published:  req.Published,
	}
}
