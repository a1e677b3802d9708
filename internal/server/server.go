package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/admission"
	"github.com/deckforge/deckforge/internal/benefit"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/clock"
	"github.com/deckforge/deckforge/internal/config"
	"github.com/deckforge/deckforge/internal/grantjob"
	"github.com/deckforge/deckforge/internal/hierarchy"
	"github.com/deckforge/deckforge/internal/ledger"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	"github.com/deckforge/deckforge/internal/metrics"
	"github.com/deckforge/deckforge/internal/notify"
	"github.com/deckforge/deckforge/internal/principal"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	"github.com/deckforge/deckforge/internal/ratelimit"
	"github.com/deckforge/deckforge/internal/submission"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	metrics.Module,
	notify.Module,
	ratelimit.Module,
	principal.Module,
	benefit.Module,
	ledger.Module,
	submission.Module,
	admission.Module,
	grantjob.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(HTTPMetrics(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	db            *gorm.DB
	genID         *snowflake.Node
	clock         clock.Clock
	principalSvc  principaldomain.Service
	benefitSvc    benefitdomain.Service
	ledgerSvc     ledgerdomain.Service
	submissionSvc submissiondomain.Service
	admissionSvc  *admission.Service
	grantJob      *grantjob.Scheduler
	limiter       *ratelimit.SubmitLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	GenID         *snowflake.Node
	Clock         clock.Clock
	PrincipalSvc  principaldomain.Service
	BenefitSvc    benefitdomain.Service
	LedgerSvc     ledgerdomain.Service
	SubmissionSvc submissiondomain.Service
	AdmissionSvc  *admission.Service
	GrantJob      *grantjob.Scheduler
	Limiter       *ratelimit.SubmitLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		db:            p.DB,
		genID:         p.GenID,
		clock:         p.Clock,
		principalSvc:  p.PrincipalSvc,
		benefitSvc:    p.BenefitSvc,
		ledgerSvc:     p.LedgerSvc,
		submissionSvc: p.SubmissionSvc,
		admissionSvc:  p.AdmissionSvc,
		grantJob:      p.GrantJob,
		limiter:       p.Limiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.Use(s.ResolvePrincipal())
	api.Use(s.Guard(defaultGuardRules))

	// -------- Submissions --------
	api.POST("/submissions", s.SubmitRateLimit(), s.CreateSubmission)
	api.GET("/submissions", s.ListMySubmissions)
	api.GET("/submissions/:id", s.GetSubmissionByID)

	// -------- Credits --------
	api.GET("/credits", s.ListMyCredits)

	// -------- Moderation --------
	api.GET("/mod/submissions", s.ListSubmissionsForReview)
	api.PATCH("/mod/submissions/:id/status", s.TransitionSubmission)

	// -------- Administration --------
	api.GET("/admin/benefits", s.ListBenefits)
	api.PUT("/admin/benefits", s.SetBenefit)
	api.GET("/admin/principals/:id", s.GetPrincipalByID)
	api.PATCH("/admin/principals/:id/role", s.SetPrincipalRole)
	api.PATCH("/admin/principals/:id/tier", s.SetPrincipalTier)
	api.POST("/admin/principals/:id/credits", s.AddPrincipalCredits)

	// -------- Jobs --------
	api.POST("/jobs/grants/run", s.RunGrantJob)
}

// defaultGuardRules gate whole route subtrees by minimum role. Longest
// prefix wins; unlisted paths fall through to handler-level checks.
var defaultGuardRules = []GuardRule{
	{PathPrefix: "/api/admin", MinRole: hierarchy.RoleAdmin},
	{PathPrefix: "/api/mod", MinRole: hierarchy.RoleModerator},
	{PathPrefix: "/api/jobs", MinRole: hierarchy.RoleDeveloper},
}
