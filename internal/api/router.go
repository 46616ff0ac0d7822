package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/auth"
	"github.com/uzdenov777/shareit/internal/booking"
	bookingHttp "github.com/uzdenov777/shareit/internal/booking/http"
	"github.com/uzdenov777/shareit/internal/file"
	fileHttp "github.com/uzdenov777/shareit/internal/file/http"
	"github.com/uzdenov777/shareit/internal/item"
	itemHttp "github.com/uzdenov777/shareit/internal/item/http"
	"github.com/uzdenov777/shareit/internal/itemrequest"
	itemRequestHttp "github.com/uzdenov777/shareit/internal/itemrequest/http"
	"github.com/uzdenov777/shareit/internal/logger"
	"github.com/uzdenov777/shareit/internal/user"
	userHttp "github.com/uzdenov777/shareit/internal/user/http"
)

// Config holds everything the router needs to build handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger

	UserService        user.Service
	ItemService        item.Service
	ItemRequestService itemrequest.Service
	BookingService     booking.Service
	FileService        file.Service
	JWTManager         *auth.JWTManager

	MaxUploadBytes  int64
	DefaultPageSize int
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request id, access log, recovery, CORS) and registers every module under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	log := logger.OrNop(cfg.Logger).Named("http")

	r := gin.New()
	r.Use(RequestID(), AccessLog(log), Recovery(log))
	r.Use(cors.New(corsConfig(cfg)))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	fileHandler := fileHttp.NewHandler(cfg.FileService, log)
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	itemHandler := itemHttp.NewHandler(cfg.ItemService, fileHandler, cfg.MaxUploadBytes, cfg.DefaultPageSize)
	requestHandler := itemRequestHttp.NewHandler(cfg.ItemRequestService, cfg.DefaultPageSize)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.DefaultPageSize)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
		itemHttp.RegisterRoutes(v1, itemHandler, authMiddleware)
		itemRequestHttp.RegisterRoutes(v1, requestHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}

func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader}

	if !cfg.IsProduction {
		config.AllowOrigins = []string{"http://localhost:8081"}
		return config
	}

	var origins []string
	for _, o := range strings.Split(cfg.ProdOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		// cors.New panics on an empty origin list; deny cross-origin calls instead.
		config.AllowOriginFunc = func(string) bool { return false }
		return config
	}
	config.AllowOrigins = origins
	return config
}
