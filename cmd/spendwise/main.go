package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/spendwise-app/spendwise/internal/auth"
	database "github.com/spendwise-app/spendwise/internal/db"
	emailService "github.com/spendwise-app/spendwise/internal/email"
	"github.com/spendwise-app/spendwise/internal/finance/application"
	"github.com/spendwise-app/spendwise/internal/finance/infrastructure"
	"github.com/spendwise-app/spendwise/internal/finance/interfaces"
	"github.com/spendwise-app/spendwise/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("Started %s %s", r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("Completed %s in %v", r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errs ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errs) > 0 && len(errs[0]) > 0 {
		payload["errors"] = errs[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router             *http.ServeMux
	authHandler        *auth.Handler
	userHandler        *user.Handler
	authService        auth.Service
	categoryHandler    *interfaces.CategoryHandler
	transactionHandler *interfaces.TransactionHandler
}

func NewServer(
	authHandler *auth.Handler,
	authService auth.Service,
	userHandler *user.Handler,
	categoryHandler *interfaces.CategoryHandler,
	transactionHandler *interfaces.TransactionHandler,
) *Server {
	return &Server{
		authHandler:        authHandler,
		userHandler:        userHandler,
		authService:        authService,
		categoryHandler:    categoryHandler,
		transactionHandler: transactionHandler,
		router:             http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET Provided")
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		return errors.New("no DB_CONNECTION_STRING Provided")
	}
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/email/verify", http.HandlerFunc(s.userHandler.HandleVerifyEmail))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/auth/2fa/verify", http.HandlerFunc(s.authHandler.HandleVerifyTwoFactor))
	publicRoutes.Handle("POST /api/auth/link/request", http.HandlerFunc(s.authHandler.HandleRequestLoginLink))
	publicRoutes.Handle("GET /api/auth/link/redeem", http.HandlerFunc(s.authHandler.HandleRedeemLoginLink))
	publicRoutes.Handle("GET /api/auth/google/login", http.HandlerFunc(s.authHandler.HandleGoogleLogin))
	publicRoutes.Handle("GET /api/auth/google/callback", http.HandlerFunc(s.authHandler.HandleGoogleCallback))
	publicRoutes.Handle("POST /api/auth/logout", http.HandlerFunc(s.authHandler.HandleLogout))
	publicRoutes.Handle("POST /api/password-reset/request", http.HandlerFunc(s.authHandler.RequestPasswordResetHandler))
	publicRoutes.Handle("POST /api/password-reset/confirm", http.HandlerFunc(s.authHandler.ResetPasswordHandler))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile", s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))

	protectedRoutes.Handle("POST /api/protected/2fa/register",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleRegisterTwoFactor)))

	protectedRoutes.Handle("POST /api/protected/2fa/verify-registration",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleVerifyTwoFactorCode)))

	protectedRoutes.Handle("POST /api/protected/2fa/request-email-code",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleRequestEmail2FACode)))

	protectedRoutes.Handle("DELETE /api/protected/2fa/disable",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))

	protectedRoutes.Handle("POST /api/protected/change-password",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.userHandler.HandleChangePassword)))

	// CATEGORIES API
	protectedRoutes.Handle("GET /api/protected/categories",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.categoryHandler.GetCategories)))

	protectedRoutes.Handle("POST /api/protected/categories",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.categoryHandler.CreateCategory)))

	protectedRoutes.Handle("GET /api/protected/categories/{categoryID}/subcategories",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.categoryHandler.GetSubCategories)))

	protectedRoutes.Handle("POST /api/protected/categories/{categoryID}/subcategories",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.categoryHandler.CreateSubCategory)))

	// TRANSACTIONS API
	protectedRoutes.Handle("GET /api/protected/transactions",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.transactionHandler.GetUserTransactions)))

	protectedRoutes.Handle("POST /api/protected/transactions",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.transactionHandler.CreateTransaction)))

	protectedRoutes.Handle("GET /api/protected/transactions/summary/monthly",
		s.authService.JWTAccessTokenMiddleware()(http.HandlerFunc(s.transactionHandler.GetMonthlySummary)))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))

	// Main router
	mainRouter := http.NewServeMux()

	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	dbService, err := database.NewDBService()
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if err := database.RunMigrations(dbService.DB); err != nil {
		log.Fatalf("Could not run database migrations: %v", err)
	}

	authRepo := auth.NewUserRepository(dbService.DB)
	userRepo := user.NewUserRepository(dbService.DB)

	sessionManager := auth.NewSessionManager()
	sessionManager.StartSessionTokenCleanup(time.Minute)
	defer sessionManager.StopSessionTokenCleanup()

	jwtManager := auth.NewJWTManager()
	newEmailService := emailService.NewEmailService()
	authenticator := auth.Authenticator{}
	googleOAuth := auth.NewGoogleOAuth()

	userService := user.NewUserService(userRepo, newEmailService)
	userHandler := user.NewHandler(userService)
	authService := auth.NewAuthService(authRepo, userService, sessionManager, jwtManager, newEmailService, authenticator, googleOAuth)
	authHandler := auth.NewHandler(authService)

	requireSubCategory := os.Getenv("REQUIRE_SUBCATEGORY") == "true"

	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	categoryService := application.NewCategoryService(categoryRepo)
	categoryHandler := interfaces.NewCategoryHandler(categoryService, respondJSON, respondError)

	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	transactionService := application.NewTransactionService(transactionRepo, categoryService, requireSubCategory)
	transactionHandler := interfaces.NewTransactionHandler(transactionService, respondJSON, respondError)

	server := NewServer(authHandler, authService, userHandler, categoryHandler, transactionHandler)
	server.RegisterRoutes()

	if err := StartCleanupScheduler(authService, userService); err != nil {
		log.Fatalf("Scheduler didn't start, stoping the app ...")
	}

	handler := loggingMiddleware(http.HandlerFunc(server.router.ServeHTTP))
	log.Println("Server starting on port 8080...")
	if err := http.ListenAndServe(":8080", handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// StartCleanupScheduler periodically removes expired login links and email
// verification codes so dead tokens cannot pile up in the database.
func StartCleanupScheduler(authService auth.Service, userService user.Service) error {
	c := cron.New()
	_, err := c.AddFunc("@every 1h", func() {
		removed, err := authService.PruneExpiredLoginLinks()
		if err != nil {
			log.Printf("Error pruning expired login links: %v", err)
		} else if removed > 0 {
			log.Printf("Pruned %d expired login links.", removed)
		}

		removed, err = userService.PruneExpiredVerificationCodes()
		if err != nil {
			log.Printf("Error pruning expired verification codes: %v", err)
		} else if removed > 0 {
			log.Printf("Pruned %d expired verification codes.", removed)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}
