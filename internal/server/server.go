// Package server is the web host: a small dashboard, JSON and image endpoints
// over the statistics core, and background workbook imports.
package server

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"office-stats/internal/charts"
	"office-stats/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires the routes to the core packages.
type Server struct {
	cfg   config.ServerConfig
	chart charts.RenderOptions
	jobs  *JobStore
	log   *zap.Logger
}

// New builds a server from configuration. The chart format falls back to PNG
// when the configured one is unknown.
func New(cfg *config.Config, log *zap.Logger) *Server {
	format, err := charts.ParseFormat(cfg.Chart.Format)
	if err != nil {
		log.Warn("unknown chart format, using png", zap.String("format", cfg.Chart.Format))
		format = charts.FormatPNG
	}
	return &Server{
		cfg: cfg.Server,
		chart: charts.RenderOptions{
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
			Format: format,
		},
		jobs: NewJobStore(),
		log:  log,
	}
}

// Jobs exposes the job store, mainly for tests.
func (s *Server) Jobs() *JobStore {
	return s.jobs
}

// Router returns the configured gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = s.maxUploadBytes()

	// Setup Sessions
	store := cookie.NewStore([]byte(s.cfg.SessionSecret))
	r.Use(sessions.Sessions("office-stats", store))

	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.GET("/logout", s.logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(s.authRequired)
	{
		authorized.GET("/", s.dashboard)

		authorized.POST("/run", s.run)
		authorized.GET("/logs", s.jobLogs)
		authorized.GET("/status", s.jobStatus)
		authorized.GET("/download-result/:filename", s.downloadResult)
		authorized.GET("/result/:job_id/comparison", s.resultComparison)

		api := authorized.Group("/api")
		api.POST("/table", s.buildTable)
		api.POST("/chart/comparison", s.comparisonChart)
		api.POST("/chart/histogram", s.histogramChart)
		api.POST("/distances/summary", s.distanceSummary)
		api.GET("/sample", s.sampleJSON)
		api.GET("/sample.csv", s.sampleCSV)
	}
	return r
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	addr := ":" + strconv.Itoa(s.cfg.Port)
	s.log.Info("server listening", zap.String("addr", addr))
	return s.Router().Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// maxUploadBytes caps the request body of a workbook upload.
func (s *Server) maxUploadBytes() int64 {
	return int64(s.cfg.MaxUploadMB) << 20
}

// authEnabled is false when no password is configured, which leaves the
// dashboard open.
func (s *Server) authEnabled() bool {
	return s.cfg.Password != ""
}

func (s *Server) authRequired(c *gin.Context) {
	if !s.authEnabled() {
		c.Next()
		return
	}
	session := sessions.Default(c)
	if session.Get("user") == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if s.authEnabled() && username == s.cfg.Username && password == s.cfg.Password {
		session := sessions.Default(c)
		session.Set("user", username)
		if err := session.Save(); err != nil {
			s.log.Error("save session", zap.Error(err))
		}
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Error": "Invalid username or password",
	})
}

func (s *Server) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		s.log.Error("save session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/login")
}
