package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vreport/internal/core/errors"
	"vreport/internal/engine/menu"
	"vreport/internal/engine/navigation"
	"vreport/internal/ui/report"
)

// VersionHeader carries the snapshot version a response was built from.
const VersionHeader = "X-Result-Version"

func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeValidationError:
		return http.StatusBadRequest
	case errors.CodeConflict:
		return http.StatusConflict
	case errors.CodeNotSupported:
		return http.StatusNotImplemented
	case errors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  string(errors.CodeOf(err)),
	})
}

// requestedID reads the active id from ?testResultId=, falling back to a
// ?location= reference in either addressable form.
func requestedID(c *gin.Context) string {
	if id := navigation.FromLocation(c.Request.URL); id != "" {
		return id
	}
	if loc := c.Query("location"); loc != "" {
		return navigation.ParseLocation(loc)
	}
	return ""
}

func (s *Server) navigate(c *gin.Context) {
	view, err := s.svc.Navigate(c.Request.Context(), requestedID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header(VersionHeader, strconv.FormatInt(view.Version, 10))
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleIndex(c *gin.Context) {
	s.navigate(c)
}

func (s *Server) handleNavigation(c *gin.Context) {
	s.navigate(c)
}

func (s *Server) handleTestResult(c *gin.Context) {
	c.Redirect(http.StatusFound, "/"+navigation.QueryLocation(c.Param("id")))
}

func (s *Server) handleResults(c *gin.Context) {
	snap := s.svc.Snapshot()
	c.Header(VersionHeader, strconv.FormatInt(snap.Version, 10))
	c.JSON(http.StatusOK, gin.H{
		"version":    snap.Version,
		"results":    menu.Sort(snap.Report.Results),
		"duplicates": snap.Duplicates,
		"filtered":   snap.Filtered,
	})
}

func (s *Server) handleResult(c *gin.Context) {
	id := c.Param("id")
	rec, ok := navigation.Find(s.svc.Snapshot().Report.Results, id)
	if !ok {
		writeError(c, errors.AddContext(errors.New(errors.CodeNotFound, "test result not found"), errors.CtxResultID, id))
		return
	}
	c.Header("Content-Location", navigation.PathLocation(rec.ID))
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleTree(c *gin.Context) {
	snap := s.svc.Snapshot()
	c.Header(VersionHeader, strconv.FormatInt(snap.Version, 10))
	c.JSON(http.StatusOK, menu.BuildTree(snap.Report.Results))
}

// handleReport returns the envelope as JSON, or the pull request summary
// when ?format=markdown.
func (s *Server) handleReport(c *gin.Context) {
	snap := s.svc.Snapshot()
	c.Header(VersionHeader, strconv.FormatInt(snap.Version, 10))

	format, err := report.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		writeError(c, err)
		return
	}
	switch format {
	case report.FormatJSON:
		c.JSON(http.StatusOK, snap.Report)
	case report.FormatMarkdown:
		md := report.NewMarkdownGenerator().Generate(snap.Report, report.MarkdownOptions{
			ReportURL:           reportURL(c),
			CollapsibleSections: true,
		})
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
	default:
		out, err := report.NewRenderer(format).Tree(menu.BuildTree(snap.Report.Results))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", out)
	}
}

func reportURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/"
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "up", "timestamp": time.Now().UTC()})
		return
	}
	status := s.health.Check(c.Request.Context())
	code := http.StatusOK
	if status.Status != "up" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
