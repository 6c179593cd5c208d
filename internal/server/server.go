// internal/server/server.go
// HTTP front end over the calculation pipeline. One POST runs one
// calculation; the process holds no per-request state.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deuter-core/adduct"
	"deuter-core/deuteration"
	"deuter-core/formula"
	"deuter/internal/config"
	"deuter/internal/output"
	"deuter/internal/version"
)

// CalculateRequest is the POST /api/v1/calculate body.
type CalculateRequest struct {
	Formula string    `json:"formula" binding:"required"`
	Adduct  string    `json:"adduct"` // spec, "auto", or empty for [M]+
	MZ      []float64 `json:"mz" binding:"required"`
	Signal  []float64 `json:"signal" binding:"required"`

	Align       bool    `json:"align"`
	Baseline    bool    `json:"baseline"`
	Cutoff      string  `json:"cutoff"` // auto | D<n> | m/z value
	FWHM        float64 `json:"fwhm"`   // 0 = server default
	IncludePlot bool    `json:"include_plot"`
}

// ErrorV1 is the JSON error body.
type ErrorV1 struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Server owns the router and the instrument defaults.
type Server struct {
	cfg    config.Config
	router *gin.Engine
}

// New builds the router. gin runs in release mode; callers that want
// request logging attach their own middleware.
func New(cfg config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{cfg: cfg, router: gin.New()}
	s.router.Use(gin.Recovery(), requestID())

	s.router.GET("/healthz", s.health)
	v1 := s.router.Group("/api/v1")
	v1.GET("/adducts", s.adducts)
	v1.POST("/calculate", s.calculate)
	return s
}

// Handler exposes the router for tests and custom listeners.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until ctx is cancelled, then drains for up to
// five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	}
}

// requestID tags every request so errors can be matched across logs.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

func (s *Server) adducts(c *gin.Context) {
	list := s.cfg.Adducts
	if list == nil {
		list = adduct.CommonAdducts
	}
	c.JSON(http.StatusOK, gin.H{"adducts": list})
}

func (s *Server) calculate(c *gin.Context) {
	id := c.GetString("id")

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorV1{ID: id, Error: err.Error()})
		return
	}

	opts, err := s.calcOptions(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorV1{ID: id, Error: err.Error()})
		return
	}

	res, err := deuteration.Calculate(req.Formula, req.Adduct, req.MZ, req.Signal, opts)
	if err != nil {
		status := http.StatusUnprocessableEntity
		var perr *formula.ParseError
		if errors.As(err, &perr) || errors.Is(err, adduct.ErrBadAdduct) || errors.Is(err, formula.ErrNoDeuterium) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorV1{ID: id, Error: err.Error()})
		return
	}

	v1 := output.ToResultV1(res, req.IncludePlot)
	v1.ID = id
	c.JSON(http.StatusOK, v1)
}

func (s *Server) calcOptions(req CalculateRequest) (deuteration.Options, error) {
	cut, err := deuteration.ParseCutoff(req.Cutoff)
	if err != nil {
		return deuteration.Options{}, err
	}
	if ac, ok := cut.(deuteration.AutoCutoff); ok && ac.Fraction == 0 {
		cut = deuteration.AutoCutoff{Fraction: s.cfg.CutoffFraction}
	}
	if req.FWHM < 0 {
		return deuteration.Options{}, errors.New("fwhm must be ≥ 0")
	}

	opts := deuteration.Options{
		Detector:           adduct.BasePeakDetector{Candidates: s.cfg.Adducts, Tolerance: s.cfg.AdductTolerance},
		Cutoff:             cut,
		Align:              req.Align,
		Baseline:           req.Baseline,
		AlignWidth:         s.cfg.AlignWidth,
		BaselinePercentile: s.cfg.BaselinePercentile,
	}
	opts.Deconv.FWHM = s.cfg.KernelFWHM
	if req.FWHM > 0 {
		opts.Deconv.FWHM = req.FWHM
	}
	opts.Deconv.WindowPad = s.cfg.WindowPad
	return opts, nil
}
