package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahana-institute/payroll-api/internal/dto"
	"github.com/sahana-institute/payroll-api/internal/service"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
	"github.com/sahana-institute/payroll-api/pkg/response"
)

// CollectionHandler wires HTTP endpoints to the collection service.
type CollectionHandler struct {
	service *service.CollectionService
}

// NewCollectionHandler creates a new handler.
func NewCollectionHandler(svc *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{service: svc}
}

// List godoc
// @Summary List daily collections
// @Tags Collections
// @Produce json
// @Param teacherId query string false "Teacher filter"
// @Param date query string false "Single day filter (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /collections [get]
func (h *CollectionHandler) List(c *gin.Context) {
	var query dto.ListCollectionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	rows, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, rows, nil)
}

// Create godoc
// @Summary Record a daily collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param payload body dto.CreateCollectionRequest true "Collection payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid collection payload"))
		return
	}

	collection, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, collection)
}

// Update godoc
// @Summary Update a daily collection
// @Tags Collections
// @Accept json
// @Produce json
// @Param id path string true "Collection ID"
// @Param payload body dto.UpdateCollectionRequest true "Collection payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /collections/{id} [put]
func (h *CollectionHandler) Update(c *gin.Context) {
	var req dto.UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid collection payload"))
		return
	}

	collection, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, collection, nil)
}

// Delete godoc
// @Summary Delete a daily collection
// @Tags Collections
// @Produce json
// @Param id path string true "Collection ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /collections/{id} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
