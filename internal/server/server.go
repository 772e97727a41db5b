package server

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"household/internal/domain/errors"
	"household/internal/domain/models"
	"household/internal/household"
	"household/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^\+[0-9]{7,15}$`)

type HouseholdAPI struct {
	httpSrv  *http.Server
	svc      *household.Service
	cfg      *Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func NewHouseholdAPI(svc *household.Service, cfg *Config, logger *zap.Logger, m *metrics.Metrics) *HouseholdAPI {
	if svc == nil || cfg == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}

	httpSrv := http.Server{
		Addr:              net.JoinHostPort(cfg.Addr, strconv.Itoa(cfg.Port)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	api := HouseholdAPI{
		httpSrv:  &httpSrv,
		svc:      svc,
		cfg:      cfg,
		logger:   logger.Named("http"),
		metrics:  m,
		validate: newValidator(),
	}

	api.configRoutes()

	return &api
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("intlphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

func (api *HouseholdAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	api.logger.Info("listening", zap.String("addr", api.httpSrv.Addr))
	return api.httpSrv.ListenAndServe()
}

func (api *HouseholdAPI) Shutdown(ctx context.Context) error {
	return api.httpSrv.Shutdown(ctx)
}

// Handler exposes the full handler chain, CORS included.
func (api *HouseholdAPI) Handler() http.Handler {
	return api.httpSrv.Handler
}

func (api *HouseholdAPI) configRoutes() {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		gin.Recovery(),
		RequestLogger(api.logger),
		api.metrics.Middleware(),
		GzipRequestDecompress(),
		MaxBodySize(api.cfg.MaxBodyBytes),
	)

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": errors.ErrNotFound.Error()})
	})

	router.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, "/login")
	})
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(api.metrics.Handler()))
	router.GET("/shop", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, models.ShopCatalog)
	})

	limiter := NewRateLimiter(api.cfg.RateLimitRPS, api.cfg.RateLimitBurst, api.logger)
	accounts := router.Group("", limiter.Middleware())
	{
		accounts.POST("/register", api.register)
		accounts.POST("/login", api.login)
		if api.svc.CanIssueTokens() {
			accounts.POST("/token", api.issueToken)
		}
	}
	router.POST("/logout", api.logout)

	admin := router.Group("", api.requireAuth())
	{
		admin.POST("/verify-pin", api.verifyPin)
		admin.POST("/create-member", api.createMember)
		admin.GET("/members", api.listMembers)
		admin.GET("/member/:id", api.getMember)
		admin.PUT("/update-member/:id", api.updateMember)
		admin.DELETE("/delete-member/:id", api.deleteMember)
		admin.POST("/add-task/:id", api.addTask)
		admin.POST("/complete-task/:id/:taskId", api.completeTask)
		admin.POST("/purchase", api.purchase)
	}

	api.httpSrv.Handler = handlers.CORS(
		handlers.AllowedOrigins(api.cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Content-Encoding"}),
		handlers.AllowCredentials(),
	)(router)
}

// respondError writes err as {"error": ...} with the status its class maps to.
func (api *HouseholdAPI) respondError(ctx *gin.Context, err error) {
	status := errors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		api.logger.Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
	}
	_ = ctx.Error(err)
	ctx.JSON(status, gin.H{"error": errors.Message(err)})
}

// bind decodes the JSON body and runs struct validation on it.
func (api *HouseholdAPI) bind(ctx *gin.Context, req any) error {
	if err := ctx.ShouldBindJSON(req); err != nil {
		return errors.ErrInvalidInput
	}
	if err := api.validate.Struct(req); err != nil {
		return validationErrorToErrorResponse(err)
	}
	return nil
}

func validationErrorToErrorResponse(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidInput
	}
	for _, verr := range verrs {
		if verr.Tag() == "required" {
			return errors.ErrMissingFields
		}
	}
	for _, verr := range verrs {
		switch verr.Field() {
		case "Email":
			return errors.ErrInvalidEmail
		case "Phone":
			return errors.ErrInvalidPhone
		}
	}
	return errors.ErrInvalidInput
}
