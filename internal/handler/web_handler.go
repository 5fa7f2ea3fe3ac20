package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/middleware"
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	"github.com/noah-isme/teacher-admin/internal/service"
	"github.com/noah-isme/teacher-admin/internal/web"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

// Page paths.
const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathTeachers  = "/teachers"
	PathAnalytics = "/analytics"
)

var columnLabels = map[models.SortField]string{
	models.SortByID:        "ID",
	models.SortByName:      "Name",
	models.SortByRole:      "Role",
	models.SortByStatus:    "Status",
	models.SortByLocation:  "Location",
	models.SortByCreatedAt: "Created",
}

var chartLabels = map[models.ChartTab]string{
	models.ChartStatus:   "Status",
	models.ChartLocation: "Location",
	models.ChartTrend:    "Monthly trend",
}

type webExporter interface {
	chartExporter
	rosterExporter
}

// WebDeps groups the services behind the HTML views.
type WebDeps struct {
	Auth         authService
	Teachers     teacherService
	Dashboard    dashboardService
	Analytics    analyticsService
	Exports      webExporter
	Location     *time.Location
	SecureCookie bool

	// RefreshInterval is how often an open dashboard page reloads itself.
	RefreshInterval time.Duration
	Logger          *zap.Logger
}

// WebHandler renders the server-side pages.
type WebHandler struct {
	deps WebDeps
}

// NewWebHandler constructs the page handler.
func NewWebHandler(deps WebDeps) *WebHandler {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.RefreshInterval < time.Second {
		deps.RefreshInterval = 10 * time.Second
	}
	return &WebHandler{deps: deps}
}

type link struct {
	Label   string
	URL     string
	Arrow   string
	Number  int
	Current bool
}

func (h *WebHandler) page(c *gin.Context, title string) gin.H {
	return gin.H{
		"Title":   title,
		"Session": sessionFromContext(c),
		"Flashes": web.Flashes(c),
	}
}

func (h *WebHandler) fail(c *gin.Context, err error, to string) {
	_ = c.Error(err)
	appErr := appErrors.FromError(err)
	if appErr.Err != nil {
		h.deps.Logger.Warn("page action failed", zap.String("path", c.Request.URL.Path), zap.Error(appErr.Err))
	}
	web.AddFlash(c, web.FlashError, appErr.Message)
	c.Redirect(http.StatusFound, to)
}

// Root sends visitors to the login page, which forwards signed-in operators.
func (h *WebHandler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, PathLogin)
}

// LoginForm renders the sign-in page, or forwards an existing session.
func (h *WebHandler) LoginForm(c *gin.Context) {
	if sessionFromContext(c) != nil {
		c.Redirect(http.StatusFound, PathDashboard)
		return
	}
	data := h.page(c, "Sign in")
	data["Email"] = c.Query("email")
	c.HTML(http.StatusOK, "login.tmpl", data)
}

// Login handles the sign-in form.
func (h *WebHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, "Please enter email and password"), PathLogin)
		return
	}
	res, err := h.deps.Auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, PathLogin+"?email="+url.QueryEscape(req.Email))
		return
	}
	if err := middleware.SaveToken(c, res.Token, cookieMaxAge(res), h.deps.SecureCookie); err != nil {
		h.fail(c, err, PathLogin)
		return
	}
	c.Redirect(http.StatusFound, PathDashboard)
}

// Logout revokes the session and returns to the login page.
func (h *WebHandler) Logout(c *gin.Context) {
	if err := h.deps.Auth.Logout(c.Request.Context(), sessionFromContext(c)); err != nil {
		h.deps.Logger.Warn("logout failed", zap.Error(err))
	}
	_ = middleware.ClearToken(c)
	c.Redirect(http.StatusFound, PathLogin)
}

// Dashboard renders the stats cards.
func (h *WebHandler) Dashboard(c *gin.Context) {
	stats, err := h.deps.Dashboard.Stats(c.Request.Context())
	if err != nil {
		web.AddFlash(c, web.FlashError, appErrors.FromError(err).Message)
	}
	data := h.page(c, "Dashboard")
	data["RefreshSeconds"] = int(h.deps.RefreshInterval / time.Second)
	if stats != nil {
		data["Stats"] = stats
	}
	c.HTML(http.StatusOK, "dashboard.tmpl", data)
}

// RefreshDashboard fetches a new snapshot on demand.
func (h *WebHandler) RefreshDashboard(c *gin.Context) {
	if _, err := h.deps.Dashboard.Refresh(c.Request.Context(), service.TriggerManual); err != nil {
		h.fail(c, err, PathDashboard)
		return
	}
	c.Redirect(http.StatusFound, PathDashboard)
}

// Teachers renders the filtered, sorted, paged roster.
func (h *WebHandler) Teachers(c *gin.Context) {
	var params dto.ListQuery
	_ = c.ShouldBindQuery(&params)
	query, err := params.Query(h.deps.Location)
	if err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()), PathTeachers)
		return
	}

	view, err := h.deps.Teachers.List(c.Request.Context(), query)
	data := h.page(c, "Teachers")
	data["Statuses"] = models.Statuses
	data["Filter"] = query.Filter
	data["Sort"] = query.Sort
	data["From"] = params.From
	data["To"] = params.To
	if err != nil {
		data["Flashes"] = append(data["Flashes"].([]web.Flash), web.Flash{Kind: web.FlashError, Message: appErrors.FromError(err).Message})
		data["Empty"] = true
		c.HTML(http.StatusOK, "teachers.tmpl", data)
		return
	}

	base := filterValues(params.FilterQuery)
	data["Fingerprint"] = view.Fingerprint
	data["Roles"] = view.Roles
	data["Locations"] = view.Locations
	data["Rows"] = view.Page.Rows
	data["Empty"] = view.Page.Empty
	data["Columns"] = sortColumns(base, view.Sort, view.Fingerprint, view.Page.Number)
	data["Pages"] = pageLinks(base, view.Sort, view.Fingerprint, view.Page)
	data["ExportLinks"] = exportLinks(base, view.Sort)
	c.HTML(http.StatusOK, "teachers.tmpl", data)
}

// ExportTeachers stores a roster export and redirects to its download link.
func (h *WebHandler) ExportTeachers(c *gin.Context) {
	var params dto.ListQuery
	_ = c.ShouldBindQuery(&params)
	query, err := params.Query(h.deps.Location)
	if err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()), PathTeachers)
		return
	}
	result, err := h.deps.Exports.ExportRoster(c.Request.Context(), models.ExportFormat(c.Query("format")), query.Filter, query.Sort)
	if err != nil {
		h.fail(c, err, PathTeachers)
		return
	}
	c.Redirect(http.StatusFound, result.Files[0].URL)
}

// NewTeacher renders an empty form.
func (h *WebHandler) NewTeacher(c *gin.Context) {
	h.renderForm(c, 0, models.TeacherInput{Status: models.StatusActive})
}

// EditTeacher renders the form prefilled with the stored record.
func (h *WebHandler) EditTeacher(c *gin.Context) {
	id, err := models.ParseTeacherID(c.Param("id"))
	if err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id"), PathTeachers)
		return
	}
	teacher, err := h.deps.Teachers.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, PathTeachers)
		return
	}
	h.renderForm(c, id, models.InputFrom(*teacher))
}

// SaveTeacher handles both create and update submissions.
func (h *WebHandler) SaveTeacher(c *gin.Context) {
	var input models.TeacherInput
	_ = c.ShouldBind(&input)

	var id models.TeacherID
	if raw := c.Param("id"); raw != "" {
		parsed, err := models.ParseTeacherID(raw)
		if err != nil {
			h.fail(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id"), PathTeachers)
			return
		}
		id = parsed
	}

	var err error
	if id == 0 {
		_, err = h.deps.Teachers.Create(c.Request.Context(), input)
	} else {
		_, err = h.deps.Teachers.Update(c.Request.Context(), id, input)
	}
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrValidation.Code {
			_ = c.Error(err)
			web.AddFlash(c, web.FlashError, appErr.Message)
			h.renderForm(c, id, input)
			return
		}
		h.fail(c, err, formPath(id))
		return
	}

	if id == 0 {
		web.AddFlash(c, web.FlashSuccess, "Teacher added")
	} else {
		web.AddFlash(c, web.FlashSuccess, "Teacher updated")
	}
	c.Redirect(http.StatusFound, PathTeachers)
}

// DeleteTeacher removes a record and returns to the list.
func (h *WebHandler) DeleteTeacher(c *gin.Context) {
	id, err := models.ParseTeacherID(c.Param("id"))
	if err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id"), PathTeachers)
		return
	}
	if err := h.deps.Teachers.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, PathTeachers)
		return
	}
	web.AddFlash(c, web.FlashSuccess, "Teacher deleted")
	c.Redirect(http.StatusFound, PathTeachers)
}

// Analytics renders the chart tabs.
func (h *WebHandler) Analytics(c *gin.Context) {
	h.renderAnalytics(c, nil)
}

// ExportChart stores the selected chart and shows its download links. An
// unknown chart changes nothing.
func (h *WebHandler) ExportChart(c *gin.Context) {
	filter, _, ok := h.analyticsFilter(c)
	if !ok {
		return
	}
	result, err := h.deps.Exports.ExportChart(c.Request.Context(), models.ChartTab(c.Query("chart")), filter)
	if err != nil {
		h.fail(c, err, PathAnalytics)
		return
	}
	h.renderAnalytics(c, result)
}

func (h *WebHandler) renderAnalytics(c *gin.Context, export *models.ExportResult) {
	filter, values, ok := h.analyticsFilter(c)
	if !ok {
		return
	}
	chart := models.ChartTab(c.Query("chart"))
	if !chart.Valid() {
		chart = models.ChartStatus
	}

	summary, err := h.deps.Analytics.Summary(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, PathDashboard)
		return
	}
	series, _ := summary.Series(chart)

	tabs := make([]link, 0, len(models.ChartTabs))
	for _, tab := range models.ChartTabs {
		v := cloneValues(values)
		v.Set("chart", string(tab))
		tabs = append(tabs, link{Label: chartLabels[tab], URL: PathAnalytics + "?" + v.Encode(), Current: tab == chart})
	}
	v := cloneValues(values)
	v.Set("chart", string(chart))

	data := h.page(c, "Analytics")
	data["Summary"] = summary
	data["Filter"] = filter
	data["Chart"] = chart
	data["Series"] = series
	data["Tabs"] = tabs
	data["ImageURL"] = PathAnalytics + "/chart.png?" + v.Encode()
	data["ExportAction"] = PathAnalytics + "/export?" + v.Encode()
	if export != nil {
		data["Export"] = export
	}
	c.HTML(http.StatusOK, "analytics.tmpl", data)
}

func (h *WebHandler) analyticsFilter(c *gin.Context) (models.FilterState, url.Values, bool) {
	var params dto.FilterQuery
	_ = c.ShouldBindQuery(&params)
	filter, err := params.FilterState(h.deps.Location)
	if err != nil {
		h.fail(c, appErrors.Clone(appErrors.ErrValidation, err.Error()), PathAnalytics)
		return filter, nil, false
	}
	return filter, filterValues(params), true
}

func (h *WebHandler) renderForm(c *gin.Context, id models.TeacherID, input models.TeacherInput) {
	title := "Add teacher"
	if id != 0 {
		title = "Edit teacher"
	}
	data := h.page(c, title)
	data["ID"] = id
	data["Input"] = input
	data["Action"] = formPath(id)
	data["Statuses"] = models.Statuses
	data["Locations"] = h.deps.Teachers.Locations()
	c.HTML(http.StatusOK, "teacher_form.tmpl", data)
}

func formPath(id models.TeacherID) string {
	if id == 0 {
		return "/teacher"
	}
	return "/teacher/" + id.String()
}

func filterValues(q dto.FilterQuery) url.Values {
	v := url.Values{}
	for key, value := range map[string]string{
		"name": q.Name, "status": q.Status, "role": q.Role,
		"location": q.Location, "from": q.From, "to": q.To,
	} {
		if value != "" && value != models.FilterAll {
			v.Set(key, value)
		}
	}
	return v
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func sortColumns(base url.Values, current models.SortState, fingerprint string, page int) []link {
	cols := make([]link, 0, len(models.SortFields))
	for _, field := range models.SortFields {
		next := current.Next(field)
		v := cloneValues(base)
		v.Set("sort", string(next.Field))
		v.Set("order", string(next.Order))
		v.Set("page", strconv.Itoa(page))
		v.Set("fp", fingerprint)
		col := link{Label: columnLabels[field], URL: PathTeachers + "?" + v.Encode()}
		if field == current.Field {
			col.Arrow = " ▲"
			if current.Order == models.OrderDesc {
				col.Arrow = " ▼"
			}
		}
		cols = append(cols, col)
	}
	return cols
}

func pageLinks(base url.Values, sort models.SortState, fingerprint string, page roster.Page) []link {
	links := make([]link, 0, len(page.Numbers))
	for _, n := range page.Numbers {
		v := cloneValues(base)
		v.Set("sort", string(sort.Field))
		v.Set("order", string(sort.Order))
		v.Set("page", strconv.Itoa(n))
		v.Set("fp", fingerprint)
		links = append(links, link{Number: n, URL: PathTeachers + "?" + v.Encode(), Current: n == page.Number})
	}
	return links
}

func exportLinks(base url.Values, sort models.SortState) []link {
	formats := []models.ExportFormat{models.FormatCSV, models.FormatXLSX, models.FormatPDF}
	links := make([]link, 0, len(formats))
	for _, f := range formats {
		v := cloneValues(base)
		v.Set("sort", string(sort.Field))
		v.Set("order", string(sort.Order))
		v.Set("format", string(f))
		links = append(links, link{Label: string(f), URL: PathTeachers + "/export?" + v.Encode()})
	}
	return links
}
