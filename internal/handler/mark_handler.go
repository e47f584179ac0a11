package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-marks-api/internal/service"
	appErrors "github.com/noah-isme/student-marks-api/pkg/errors"
	"github.com/noah-isme/student-marks-api/pkg/pagination"
	"github.com/noah-isme/student-marks-api/pkg/response"
)

// MarkHandler handles mark endpoints.
type MarkHandler struct {
	service *service.MarkService
}

// NewMarkHandler constructs a mark handler.
func NewMarkHandler(svc *service.MarkService) *MarkHandler {
	return &MarkHandler{service: svc}
}

// List godoc
// @Summary List marks
// @Tags Marks
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (1-100, default 10)"
// @Success 200 {object} response.Envelope
// @Router /marks [get]
func (h *MarkHandler) List(c *gin.Context) {
	params := pagination.Parse(c.Query("page"), c.Query("limit"))

	marks, meta, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, marks, meta)
}

// ListByStudent godoc
// @Summary List marks of one student
// @Tags Marks
// @Produce json
// @Param studentId path string true "Student ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (1-100, default 10)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} map[string]string
// @Router /marks/student/{studentId} [get]
func (h *MarkHandler) ListByStudent(c *gin.Context) {
	params := pagination.Parse(c.Query("page"), c.Query("limit"))

	marks, meta, err := h.service.ListByStudent(c.Request.Context(), c.Param("studentId"), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, marks, meta)
}

// Get godoc
// @Summary Get mark by id
// @Tags Marks
// @Produce json
// @Param id path string true "Mark ID"
// @Success 200 {object} models.MarkDetail
// @Failure 404 {object} map[string]string
// @Router /marks/{id} [get]
func (h *MarkHandler) Get(c *gin.Context) {
	mark, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, mark)
}

// Create godoc
// @Summary Record a mark
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.CreateMarkRequest true "Mark payload"
// @Success 201 {object} models.MarkDetail
// @Failure 400 {object} map[string]interface{}
// @Router /marks [post]
func (h *MarkHandler) Create(c *gin.Context) {
	var req service.CreateMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mark, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mark)
}

// Update godoc
// @Summary Update mark
// @Tags Marks
// @Accept json
// @Produce json
// @Param id path string true "Mark ID"
// @Param payload body service.UpdateMarkRequest true "Partial mark payload"
// @Success 200 {object} models.MarkDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /marks/{id} [put]
func (h *MarkHandler) Update(c *gin.Context) {
	var req service.UpdateMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mark, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, mark)
}

// Delete godoc
// @Summary Delete mark
// @Tags Marks
// @Produce json
// @Param id path string true "Mark ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /marks/{id} [delete]
func (h *MarkHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
