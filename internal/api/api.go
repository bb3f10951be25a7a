// Package api serves the import pipeline and ledger over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/expenso-dev/expenso/internal/fields"
	"github.com/expenso-dev/expenso/internal/importer"
	"github.com/expenso-dev/expenso/internal/importlog"
	"github.com/expenso-dev/expenso/internal/ingest"
	"github.com/expenso-dev/expenso/internal/ledger"
	"github.com/expenso-dev/expenso/internal/logger"
)

// Server exposes an Ingester over HTTP.
type Server struct {
	in     *ingest.Ingester
	budget decimal.Decimal
	log    *zerolog.Logger
}

// NewServer creates a Server. A zero budget disables budget reporting.
func NewServer(in *ingest.Ingester, budget decimal.Decimal, log *zerolog.Logger) *Server {
	return &Server{in: in, budget: budget, log: logger.Or(log)}
}

// Routes builds the gin engine with every endpoint registered.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	v1 := r.Group("/v1")
	v1.POST("/parse/statement", s.parseStatement)
	v1.POST("/parse/email", s.parseEmail)
	v1.POST("/import/statement", s.importStatement)
	v1.POST("/import/email", s.importEmail)
	v1.GET("/expenses", s.listExpenses)
	v1.GET("/summary", s.summary)
	return r
}

// requestLogger tags a logger with the request and stores it in the
// request context for handlers.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log := logger.WithFields(*s.log, map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
		c.Next()
		log.Debug().
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

type emailRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) parseStatement(c *gin.Context) {
	txns, err := s.in.Statements.Parse(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactionViews(txns)})
}

func (s *Server) parseEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txns := s.in.Emails.ParseEmail(importer.Email{Subject: req.Subject, Body: req.Body})
	c.JSON(http.StatusOK, gin.H{"transactions": transactionViews(txns)})
}

func (s *Server) importStatement(c *gin.Context) {
	txns, err := s.in.Statements.Parse(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	file := c.DefaultQuery("file", "-")
	res, err := s.in.Record(importlog.KindStatement, file, txns, dryRun(c))
	if err != nil {
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Msg("importing statement")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, importResponse(res))
}

func (s *Server) importEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.in.ImportEmail(importer.Email{Subject: req.Subject, Body: req.Body}, dryRun(c))
	if err != nil {
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Msg("importing email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, importResponse(res))
}

func importResponse(res ingest.Result) gin.H {
	return gin.H{
		"transactions": transactionViews(res.Transactions),
		"imported":     expenseViews(res.Imported),
		"skipped":      res.Skipped,
	}
}

func (s *Server) listExpenses(c *gin.Context) {
	all, err := s.in.Ledger.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if m := c.Query("month"); m != "" {
		month, err := ledger.ParseMonth(m)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		all = ledger.InMonth(all, month.Year(), int(month.Month()))
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenseViews(all)})
}

func (s *Server) summary(c *gin.Context) {
	month := fields.Today()
	if m := c.Query("month"); m != "" {
		var err error
		if month, err = ledger.ParseMonth(m); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sum, err := s.in.Ledger.MonthTotal(month.Year(), int(month.Month()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	v := newSummaryView(month.Format(ledger.MonthFormat), sum)
	if left, ok := ledger.Remaining(s.budget, sum.Total); ok {
		v.Budget = s.budget.StringFixed(2)
		v.Remaining = left.StringFixed(2)
	}
	c.JSON(http.StatusOK, v)
}

func dryRun(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("dry_run"))
	return v
}
