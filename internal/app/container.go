package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/uzdenov777/shareit/internal/api"
	"github.com/uzdenov777/shareit/internal/auth"
	"github.com/uzdenov777/shareit/internal/booking"
	"github.com/uzdenov777/shareit/internal/file"
	"github.com/uzdenov777/shareit/internal/item"
	"github.com/uzdenov777/shareit/internal/itemrequest"
	"github.com/uzdenov777/shareit/internal/pkg/clock"
	"github.com/uzdenov777/shareit/internal/pkg/storage"
	"github.com/uzdenov777/shareit/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Storage      storage.Storage
	Clock        clock.Clock
	Logger       *zap.Logger

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	RejectApprovedOverlap bool
	MaxUploadBytes        int64
	DefaultPageSize       int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	ItemService    item.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, cfg.Logger)

	// File Module
	fileRepo := file.NewRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, cfg.Storage, cfg.Logger)

	// Item Request, Booking and Item Modules.
	// Items look requests up and read rental history; requests list their answering items.
	requestRepo := itemrequest.NewPgxRepository(cfg.DBPool)
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	history := booking.NewHistory(bookingRepo, clk)

	itemRepo := item.NewPgxRepository(cfg.DBPool)
	itemService := item.NewService(itemRepo, userService, requestRepo, history, clk, cfg.Logger)

	requestService := itemrequest.NewService(requestRepo, userService, itemService, clk, cfg.Logger)
	bookingService := booking.NewService(bookingRepo, userService, itemService, clk, cfg.RejectApprovedOverlap, cfg.Logger)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		Logger:             cfg.Logger,
		UserService:        userService,
		ItemService:        itemService,
		ItemRequestService: requestService,
		BookingService:     bookingService,
		FileService:        fileService,
		JWTManager:         jwtManager,
		MaxUploadBytes:     cfg.MaxUploadBytes,
		DefaultPageSize:    cfg.DefaultPageSize,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
	}
}
