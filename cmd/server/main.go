// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/inkwellhq/inkwell-web/config"
	"github.com/inkwellhq/inkwell-web/internal/api"
	"github.com/inkwellhq/inkwell-web/internal/auth"
	"github.com/inkwellhq/inkwell-web/internal/database"
	"github.com/inkwellhq/inkwell-web/internal/llm"
	"github.com/inkwellhq/inkwell-web/internal/services"
	"github.com/inkwellhq/inkwell-web/internal/websocket"
	"github.com/inkwellhq/inkwell-web/internal/writing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	userService := services.NewUserService(db)
	bookService := services.NewBookService(db)
	activityService := services.NewActivityService(db, bookService)

	if err := activityService.SeedDefaultAchievements(); err != nil {
		log.Fatalf("Failed to seed achievement catalog: %v", err)
	}

	llmClient, err := llm.NewLLMClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	generator := writing.NewGenerator(llmClient)

	auth.Init()
	authHandler := auth.NewHandler(userService)

	r := mux.NewRouter()

	// Public routes (no authentication required)
	publicRouter := r.PathPrefix("/").Subrouter()
	publicRouter.HandleFunc("/api/v1/auth/register", authHandler.Register).Methods("POST")
	publicRouter.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")
	publicRouter.HandleFunc("/api/v1/auth/logout", authHandler.Logout).Methods("POST")
	publicRouter.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("./web/static/"))))

	// Authenticated routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(auth.Middleware)

	// Profile routes
	authRouter.HandleFunc("/api/v1/profile", authHandler.Profile).Methods("GET")
	authRouter.HandleFunc("/api/v1/profile", authHandler.UpdateProfile).Methods("PUT")
	authRouter.HandleFunc("/api/v1/profile/password", authHandler.ChangePassword).Methods("PUT")

	// WebSocket notifications
	hub := websocket.RegisterRoutes(authRouter)

	// API routes
	apiRouter := authRouter.PathPrefix("/api/v1").Subrouter()
	handler := api.NewHandler(bookService, activityService, userService, generator, hub)
	handler.RegisterRoutes(apiRouter)

	// Narration routes (requires Google credentials when enabled)
	api.RegisterNarrationRoutes(apiRouter, &cfg.Narration, bookService)

	// Serve the main page
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./web/templates/index.html")
	}).Methods("GET")

	// CORS setup for development
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Inkwell server starting on port %s", port)
	log.Printf("Database: %s", cfg.Database.Path)
	log.Printf("LLM provider: %s", cfg.LLM.Provider)

	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
