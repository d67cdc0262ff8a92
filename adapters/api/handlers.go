package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"biasdetect/adapters/excel"
	"biasdetect/app"
	"biasdetect/domain/core"
	"biasdetect/domain/table"
	"biasdetect/internal/errors"
	"biasdetect/internal/fairness"

	"github.com/gin-gonic/gin"
)

// Response headers on mitigated downloads.
const (
	headerWeighted = "X-Bias-Weighted"
	headerWarning  = "X-Bias-Warning"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"history": s.audits.HistoryEnabled(),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	t, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	req := app.AnalyzeRequest{
		TargetColumn:     strings.TrimSpace(c.PostForm("target")),
		SensitiveColumns: splitList(c.PostForm("sensitive")),
	}
	if raw := c.PostForm("bins"); raw != "" {
		bins, err := strconv.Atoi(raw)
		if err != nil || bins < 1 {
			s.respondError(c, errors.InvalidInput(fmt.Sprintf("invalid bins %q", raw)))
			return
		}
		req.Bins = bins
	}
	if raw := c.PostForm("clean"); raw != "" {
		clean, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(c, errors.InvalidInput(fmt.Sprintf("invalid clean flag %q", raw)))
			return
		}
		req.Clean = clean
	}
	if raw := c.PostForm("predict"); raw != "" {
		predict, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(c, errors.InvalidInput(fmt.Sprintf("invalid predict flag %q", raw)))
			return
		}
		req.Predict = predict
	}

	report, err := s.audits.Analyze(c.Request.Context(), app.NewSession(t), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleMitigate(c *gin.Context) {
	t, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	strategy, err := fairness.ParseStrategy(c.PostForm("strategy"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	session := app.NewSession(t)
	session.SensitiveColumns = splitList(c.PostForm("sensitive"))
	out, err := s.audits.Mitigate(session, strategy)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteCSV(&buf, out); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to encode mitigated dataset"))
		return
	}
	base := strings.TrimSuffix(t.Name(), filepath.Ext(t.Name()))
	if len(session.WeightedBy) == 0 {
		c.Header(headerWeighted, "false")
		c.Header(headerWarning, fmt.Sprintf("none of %s could be weighted; dataset returned unchanged",
			strings.Join(session.SensitiveColumns, ", ")))
	} else {
		c.Header(headerWeighted, "true")
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"mitigated_%s.csv\"", base))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) handleListReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, err := s.audits.ListReports(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": records,
		"count":   len(records),
	})
}

func (s *Server) handleGetReport(c *gin.Context) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	report, err := s.audits.GetReport(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// readUpload parses the multipart "file" field into a table named after the upload.
func (s *Server) readUpload(c *gin.Context) (*table.Table, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	header, err := c.FormFile("file")
	if err != nil {
		return nil, errors.InvalidInput("a dataset must be uploaded in the \"file\" field")
	}
	fileType := excel.FileType(header.Filename)
	if fileType == "" {
		return nil, errors.UnsupportedFormat(filepath.Ext(header.Filename))
	}

	f, err := header.Open()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	defer f.Close()

	t, err := excel.Read(f, fileType)
	if err != nil {
		return nil, err
	}
	return t.WithName(filepath.Base(header.Filename)), nil
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	code := errors.GetCode(err)
	if code == "UNKNOWN" {
		code = codeForStatus(status)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}

// statusFor maps application error codes, then domain error classes, to HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeValidationError, errors.CodeInvalidInput, errors.CodeUnsupportedFormat:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case "UNKNOWN":
	default:
		return http.StatusInternalServerError
	}
	switch {
	case core.IsValidationError(err):
		return http.StatusBadRequest
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return errors.CodeValidationError
	case http.StatusNotFound:
		return errors.CodeNotFound
	}
	return errors.CodeInternalError
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
