package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"office-stats/internal/charts"
	"office-stats/internal/excel"
	"office-stats/internal/export"
	"office-stats/internal/models"
	"office-stats/internal/sample"
	"office-stats/internal/stats"
	"office-stats/internal/table"
)

// tableResponse is the JSON shape of a built table.
type tableResponse struct {
	MethodLabel  string         `json:"method_label,omitempty"`
	Columns      []table.Column `json:"columns"`
	Rows         []table.Row    `json:"rows"`
	DownloadLink string         `json:"download_link"`
}

// histogramRequest carries a raw distance sequence. MethodLabel wins over
// DistanceMethod when both are set.
type histogramRequest struct {
	Distances      []float64             `json:"distances"`
	MethodLabel    string                `json:"method_label"`
	DistanceMethod models.DistanceMethod `json:"distance_method"`
}

func (r histogramRequest) label() string {
	if r.MethodLabel != "" {
		return r.MethodLabel
	}
	if r.DistanceMethod != "" {
		return r.DistanceMethod.Label()
	}
	return stats.DefaultMethodLabel
}

// bindOffices decodes and validates an offices mapping. It writes the error
// response itself and reports whether the handler may continue.
func (s *Server) bindOffices(c *gin.Context) (map[string]models.OfficeStatistics, bool) {
	var offices map[string]models.OfficeStatistics
	if err := c.ShouldBindJSON(&offices); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	if err := models.Validate(offices); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return offices, true
}

func (s *Server) buildOfficeTable(c *gin.Context) (*table.Table, string, bool) {
	offices, ok := s.bindOffices(c)
	if !ok {
		return nil, "", false
	}
	t, err := stats.Build(offices)
	if err != nil {
		if eris.Is(err, stats.ErrMixedDistanceMethods) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return nil, "", false
		}
		s.log.Error("build table", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build table"})
		return nil, "", false
	}
	if t == nil {
		c.Status(http.StatusNoContent)
		return nil, "", false
	}
	label, _ := stats.MethodLabel(offices)
	return t, label, true
}

func (s *Server) buildTable(c *gin.Context) {
	t, label, ok := s.buildOfficeTable(c)
	if !ok {
		return
	}
	link, err := export.DownloadLink(t, c.DefaultQuery("filename", "office_statistics.csv"), c.Query("label"))
	if err != nil {
		s.log.Error("download link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode table"})
		return
	}
	c.JSON(http.StatusOK, tableResponse{
		MethodLabel:  label,
		Columns:      t.Columns,
		Rows:         t.Rows,
		DownloadLink: link,
	})
}

func (s *Server) comparisonChart(c *gin.Context) {
	t, _, ok := s.buildOfficeTable(c)
	if !ok {
		return
	}
	s.writeChart(c, charts.Comparison(t))
}

func (s *Server) histogramChart(c *gin.Context) {
	var req histogramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.DistanceMethod == "" {
		req.DistanceMethod = models.DistanceMethod(strings.ToLower(c.Query("method")))
	}
	s.writeChart(c, charts.Histogram(req.Distances, req.label()))
}

func (s *Server) distanceSummary(c *gin.Context) {
	var req histogramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	summary := stats.Summarize(req.Distances, req.label())
	if summary == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// writeChart renders ch in the format named by the format query parameter, or
// the configured default. A nil chart means there is nothing to show.
func (s *Server) writeChart(c *gin.Context, ch *charts.Chart) {
	if ch == nil {
		c.Status(http.StatusNoContent)
		return
	}
	opts := s.chart
	if q := c.Query("format"); q != "" {
		format, err := charts.ParseFormat(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Format = format
	}
	var buf bytes.Buffer
	if err := ch.Render(&buf, opts); err != nil {
		s.log.Error("render chart", zap.String("title", ch.Title), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render chart"})
		return
	}
	c.Data(http.StatusOK, opts.Format.ContentType(), buf.Bytes())
}

func (s *Server) sampleJSON(c *gin.Context) {
	t := sample.Get()
	c.JSON(http.StatusOK, gin.H{"columns": t.Columns, "rows": t.Rows})
}

func (s *Server) sampleCSV(c *gin.Context) {
	payload, err := export.CSV(sample.Get())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not encode sample"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="sample.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// importHeader lists the columns /run reads from the offices sheet.
func importHeader() []string {
	cols := stats.Columns(stats.DefaultMethodLabel, true)
	labels := make([]string, len(cols))
	for i, col := range cols {
		labels[i] = col.Label
	}
	return labels
}

// dashboard shows the latest imported table, or the sample register when
// nothing has been imported yet.
func (s *Server) dashboard(c *gin.Context) {
	data := gin.H{
		"Message":      c.Query("message"),
		"ImportSheet":  excel.DefaultSheet,
		"ImportHeader": importHeader(),
	}

	t, title, filename := sample.Get(), "Example School Register", "sample.csv"
	if job := s.jobs.Latest(); job != nil {
		if snap := job.Snapshot(); snap.Result != nil {
			t, title, filename = snap.Result.Table, "Education Office Statistics", snap.Result.CSV
			data["LatestJob"] = snap.ID
			data["HasChart"] = charts.Comparison(t) != nil
		}
	}
	link, err := export.DownloadLink(t, filename, "Download CSV")
	if err != nil {
		s.log.Error("download link", zap.Error(err))
	}
	data["Title"] = title
	data["Header"] = t.Header()
	data["Records"] = t.Records()
	data["Link"] = template.HTML(link)
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) run(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes())
	file, err := c.FormFile("input_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.HTML(http.StatusRequestEntityTooLarge, "index.html", gin.H{
				"Message": fmt.Sprintf("File is larger than %d MB.", s.cfg.MaxUploadMB),
			})
			return
		}
		c.HTML(http.StatusOK, "index.html", gin.H{"Message": "Please choose a file."})
		return
	}

	sheet := strings.TrimSpace(c.PostForm("sheet"))
	if sheet == "" {
		sheet = excel.DefaultSheet
	}

	// Save uploaded file
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.log.Error("create upload dir", zap.Error(err))
		c.HTML(http.StatusOK, "index.html", gin.H{"Message": "Upload failed."})
		return
	}
	inputPath := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, inputPath); err != nil {
		s.log.Error("save upload", zap.Error(err))
		c.HTML(http.StatusOK, "index.html", gin.H{"Message": "Upload failed."})
		return
	}

	// Create Job
	job := NewJob()
	s.jobs.Add(job)

	// Start Processing in Goroutine
	go s.processJob(job, importRequest{
		InputPath:   inputPath,
		Sheet:       sheet,
		Standardize: c.PostForm("standardize") != "",
	})

	c.HTML(http.StatusOK, "index.html", gin.H{
		"JobID":   job.ID,
		"Message": "Import started...",
	})
}

func (s *Server) jobLogs(c *gin.Context) {
	job := s.jobs.Get(c.Query("job_id"))
	if job == nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "Job not found"})
		return
	}
	snap := job.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"logs":     snap.Logs,
		"status":   snap.Status,
		"progress": snap.Progress,
	})
}

func (s *Server) jobStatus(c *gin.Context) {
	job := s.jobs.Get(c.Query("job_id"))
	if job == nil {
		c.JSON(http.StatusOK, gin.H{"ok": false})
		return
	}
	snap := job.Snapshot()
	res := gin.H{
		"ok":     true,
		"status": snap.Status,
		"error":  snap.Error,
	}
	if snap.Result != nil {
		res["result"] = snap.Result
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) downloadResult(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	target := filepath.Join(s.cfg.OutputDir, filename)
	if _, err := os.Stat(target); err != nil {
		c.String(http.StatusNotFound, "Result not found")
		return
	}
	c.FileAttachment(target, filename)
}

func (s *Server) resultComparison(c *gin.Context) {
	job := s.jobs.Get(c.Param("job_id"))
	if job == nil {
		c.String(http.StatusNotFound, "Job not found")
		return
	}
	snap := job.Snapshot()
	if snap.Result == nil {
		c.Status(http.StatusNoContent)
		return
	}
	s.writeChart(c, charts.Comparison(snap.Result.Table))
}
