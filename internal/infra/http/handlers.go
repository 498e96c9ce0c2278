package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"certmanager/internal/domain"
	"certmanager/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type controlResponse struct {
	ID                   uint    `json:"id"`
	RequirementID        string  `json:"requirement_id"`
	Domain               string  `json:"domain"`
	Title                string  `json:"title"`
	Statement            string  `json:"statement"`
	Discussion           *string `json:"discussion"`
	FurtherDiscussion    *string `json:"further_discussion"`
	KeyReferences        *string `json:"key_references"`
	AssessmentObjectives *string `json:"assessment_objectives"`
	AssessmentMethods    *string `json:"assessment_methods"`
	C3PAOFinding         *string `json:"c3pao_finding"`
	SelfImplStatus       *string `json:"self_impl_status"`
}

type controlUpdateRequest struct {
	C3PAOFinding   *string `json:"c3pao_finding"`
	SelfImplStatus *string `json:"self_impl_status"`
}

type dashboardResponse struct {
	Total int            `json:"total"`
	C3PAO map[string]int `json:"c3pao"`
	Impl  map[string]int `json:"impl"`
}

type textLogRequest struct {
	Kind *string `json:"kind"`
	Text *string `json:"text"`
}

type textLogResponse struct {
	ID            uint   `json:"id"`
	RequirementID string `json:"requirement_id"`
	Kind          string `json:"kind"`
	Text          string `json:"text"`
	TS            string `json:"ts"`
}

type evidenceResponse struct {
	ID            uint   `json:"id"`
	RequirementID string `json:"requirement_id"`
	Filename      string `json:"filename"`
	Size          int64  `json:"size"`
	TS            string `json:"ts"`
	Path          string `json:"path"`
}

func (s *Server) handleListControls(c *gin.Context) {
	if s.catalog == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	rows, err := s.catalog.ListControls(c.Request.Context(), domain.ControlFilter{
		Text:   c.Query("q"),
		Domain: c.Query("domain"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]controlResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildControlResponse(row))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetControl(c *gin.Context) {
	if s.catalog == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	row, err := s.catalog.GetControl(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildControlResponse(row))
}

func (s *Server) handleUpdateControl(c *gin.Context) {
	if s.catalog == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req controlUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	row, err := s.catalog.UpdateControl(c.Request.Context(), id, domain.ControlUpdate{
		C3PAOFinding:   req.C3PAOFinding,
		SelfImplStatus: req.SelfImplStatus,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildControlResponse(row))
}

func (s *Server) handleDashboard(c *gin.Context) {
	if s.dashboard == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	counts, err := s.dashboard.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboardResponse{Total: counts.Total, C3PAO: counts.C3PAO, Impl: counts.Impl})
}

func (s *Server) handleAddTextLog(c *gin.Context) {
	if s.textlogs == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	var req textLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if req.Kind == nil || req.Text == nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "kind and text are required")
		return
	}
	entry, err := s.textlogs.Add(c.Request.Context(), c.Param("id"), usecase.TextLogInput{Kind: *req.Kind, Text: *req.Text})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildTextLogResponse(entry))
}

func (s *Server) handleListTextLog(c *gin.Context) {
	if s.textlogs == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	rows, err := s.textlogs.List(c.Request.Context(), c.Param("id"), c.Query("kind"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]textLogResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildTextLogResponse(row))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteTextLog(c *gin.Context) {
	if s.textlogs == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.textlogs.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleUploadEvidence(c *gin.Context) {
	if s.evidence == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "multipart form required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "files is required")
		return
	}
	files := make([]usecase.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadFromHeader(fh))
	}

	results, err := s.evidence.Upload(c.Request.Context(), c.Param("id"), files)
	saved := make([]evidenceResponse, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			saved = append(saved, buildEvidenceResponse(res.Evidence))
		}
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID(c),
			"saved":      len(saved),
		}).Warn("evidence upload stopped")
		writeErrorDetails(c, err, map[string]any{"saved": saved})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func uploadFromHeader(fh *multipart.FileHeader) usecase.UploadFile {
	return usecase.UploadFile{
		Filename: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (s *Server) handleListEvidence(c *gin.Context) {
	if s.evidence == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	rows, err := s.evidence.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]evidenceResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, buildEvidenceResponse(row))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteEvidence(c *gin.Context) {
	if s.evidence == nil {
		writeError(c, domain.ErrNotFound)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.evidence.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, okResponse{OK: true})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", name+" must be a non-negative integer")
		return 0, false
	}
	return uint(id), true
}

func buildControlResponse(c domain.Control) controlResponse {
	return controlResponse{
		ID:                   c.ID,
		RequirementID:        c.RequirementID,
		Domain:               c.Domain,
		Title:                c.Title,
		Statement:            c.Statement,
		Discussion:           c.Discussion,
		FurtherDiscussion:    c.FurtherDiscussion,
		KeyReferences:        c.KeyReferences,
		AssessmentObjectives: c.AssessmentObjectives,
		AssessmentMethods:    c.AssessmentMethods,
		C3PAOFinding:         c.C3PAOFinding,
		SelfImplStatus:       c.SelfImplStatus,
	}
}

func buildTextLogResponse(e domain.TextLog) textLogResponse {
	return textLogResponse{
		ID:            e.ID,
		RequirementID: e.RequirementID,
		Kind:          e.Kind,
		Text:          e.Text,
		TS:            formatTime(e.TS),
	}
}

func buildEvidenceResponse(e domain.Evidence) evidenceResponse {
	return evidenceResponse{
		ID:            e.ID,
		RequirementID: e.RequirementID,
		Filename:      e.Filename,
		Size:          e.Size,
		TS:            formatTime(e.TS),
		Path:          e.Path,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_FAILED"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func writeError(c *gin.Context, err error) {
	writeErrorDetails(c, err, nil)
}

func writeErrorDetails(c *gin.Context, err error, details map[string]any) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal error"
	}
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
