package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/middleware"
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
	"github.com/noah-isme/teacher-admin/pkg/response"
)

type teacherService interface {
	List(ctx context.Context, q roster.Query) (*roster.View, error)
	Get(ctx context.Context, id models.TeacherID) (*models.Teacher, error)
	Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error)
	Update(ctx context.Context, id models.TeacherID, input models.TeacherInput) (*models.Teacher, error)
	Delete(ctx context.Context, id models.TeacherID) error
	Locations() []string
}

type rosterExporter interface {
	ExportRoster(ctx context.Context, format models.ExportFormat, filter models.FilterState, sort models.SortState) (*models.ExportResult, error)
}

// TeacherHandler wires roster operations to HTTP routes.
type TeacherHandler struct {
	teachers teacherService
	exports  rosterExporter
	loc      *time.Location
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(teachers teacherService, exports rosterExporter, loc *time.Location) *TeacherHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TeacherHandler{teachers: teachers, exports: exports, loc: loc}
}

// List godoc
// @Summary List teachers
// @Description Filter, sort and page the roster. Pages hold five rows; pass back the fingerprint from the previous response as fp so a changed filter restarts at page 1.
// @Tags Teachers
// @Security BearerAuth
// @Produce json
// @Param name query string false "Name contains (case-insensitive)"
// @Param status query string false "Active, Inactive or All"
// @Param role query string false "Role or All"
// @Param location query string false "Location or All"
// @Param from query string false "Created on/after (YYYY-MM-DD or RFC3339)"
// @Param to query string false "Created on/before (YYYY-MM-DD or RFC3339)"
// @Param sort query string false "Sort field (id,name,role,status,location,createdAt)"
// @Param order query string false "Sort order (asc/desc)"
// @Param page query int false "Page number"
// @Param fp query string false "Filter fingerprint from the previous response"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	var params dto.ListQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid list parameters"))
		return
	}
	query, err := params.Query(h.loc)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}

	view, err := h.teachers.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ResponseMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["list"] = dto.NewTeacherListMeta(view)
	pagination := view.Page.Pagination()
	response.JSON(c, http.StatusOK, view.Page.Rows, &pagination, meta)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	id, ok := teacherIDParam(c)
	if !ok {
		return
	}
	teacher, err := h.teachers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Create godoc
// @Summary Create teacher
// @Description The name is title-cased before validation; status defaults to Active.
// @Tags Teachers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body models.TeacherInput true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var input models.TeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update godoc
// @Summary Update teacher
// @Tags Teachers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Teacher ID"
// @Param payload body models.TeacherInput true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	id, ok := teacherIDParam(c)
	if !ok {
		return
	}
	var input models.TeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete godoc
// @Summary Delete teacher
// @Tags Teachers
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 204
// @Failure 502 {object} response.Envelope
// @Router /teachers/{id} [delete]
func (h *TeacherHandler) Delete(c *gin.Context) {
	id, ok := teacherIDParam(c)
	if !ok {
		return
	}
	if err := h.teachers.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export roster
// @Description Store the filtered, sorted roster as csv, xlsx or pdf and return a signed download link.
// @Tags Exports
// @Security BearerAuth
// @Produce json
// @Param format query string true "csv, xlsx or pdf"
// @Param name query string false "Name contains"
// @Param status query string false "Status"
// @Param role query string false "Role"
// @Param location query string false "Location"
// @Param sort query string false "Sort field"
// @Param order query string false "Sort order"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teachers/export [get]
func (h *TeacherHandler) Export(c *gin.Context) {
	var params dto.ListQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export parameters"))
		return
	}
	query, err := params.Query(h.loc)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	format := models.ExportFormat(c.DefaultQuery("format", string(models.FormatCSV)))
	result, err := h.exports.ExportRoster(c.Request.Context(), format, query.Filter, query.Sort)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func teacherIDParam(c *gin.Context) (models.TeacherID, bool) {
	id, err := models.ParseTeacherID(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id"))
		return 0, false
	}
	return id, true
}
