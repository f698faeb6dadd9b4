package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	config "creatorhub/configs"
	"creatorhub/internal/api/handlers"
	"creatorhub/internal/api/middleware"
	job "creatorhub/internal/jobs"
	"creatorhub/internal/queue"
	"creatorhub/internal/realtime"
	"creatorhub/internal/repository"
	"creatorhub/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Signature-SHA256",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	connectionRepo := repository.NewPlatformConnectionRepository(db)
	contentRepo := repository.NewContentItemRepository(db)
	scheduledPostRepo := repository.NewScheduledPostRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	hub := realtime.NewHub(rdb)

	deviceID, err := gonanoid.New()
	if err != nil {
		log.Fatalf("Failed to generate device id: %v", err)
	}

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)
	r2Service := service.NewR2Service(*cfg)
	aiService := service.NewAIService(*cfg)
	onlyfansService := service.NewOnlyFansService(*cfg, connectionRepo)
	fanslyService := service.NewFanslyService(*cfg, service.NewChecksumSigner(deviceID))
	platformService := service.NewPlatformService(*cfg, connectionRepo, onlyfansService, fanslyService)
	contentService := service.NewContentService(contentRepo, r2Service, aiService, hub)
	scheduleService := service.NewScheduleService(scheduledPostRepo, contentRepo)
	jobService := service.NewJobService(jobRepo, connectionRepo)
	webhookService := service.NewWebhookService(webhookRepo, hub)
	subscriberService := service.NewSubscriberService(subscriberRepo)
	billingService := service.NewBillingService(*cfg, userRepo, subscriptionRepo)
	usageService := service.NewUsageService(*cfg)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)
	app.Get("/logout", auth.Logout)

	webhook := handlers.NewWebhookHandler(webhookService)
	app.Post("/webhooks/:id/ingest", webhook.IngestWebhook)

	billing := handlers.NewBillingHandler(billingService)
	app.Post("/billing/webhook", billing.PaymentWebhook)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.RemoveUser)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	jobH := handlers.NewJobHandler(jobService, client)
	api.Post("/jobs/create", jobH.CreateJob)
	api.Get("/jobs", jobH.ListJobs)
	api.Get("/jobs/:id", jobH.JobInfo)
	api.Post("/jobs/:id/cancel", jobH.CancelJob)
	api.Post("/jobs/:id/retry", jobH.RetryJob)
	api.Post("/jobs/sync", jobH.SyncContent)

	content := handlers.NewContentHandler(contentService, client)
	api.Post("/content/upload", content.UploadContent)
	api.Get("/content", content.ListContent)
	api.Post("/content/remove", content.RemoveContent)

	schedule := handlers.NewScheduleHandler(scheduleService, client)
	api.Post("/schedule/create", schedule.CreateScheduledPost)
	api.Get("/schedule", schedule.ListScheduledPosts)
	api.Post("/schedule/remove", schedule.RemoveScheduledPost)

	platform := handlers.NewPlatformHandler(platformService, usageService)
	api.Post("/platforms/connect", platform.ConnectPlatform)
	api.Get("/platforms", platform.ListConnections)
	api.Post("/platforms/remove", platform.DisconnectPlatform)
	api.Post("/platforms/:platform/messages", platform.SendMessage)

	api.Post("/webhooks/create", webhook.CreateWebhook)
	api.Get("/webhooks", webhook.ListWebhooks)
	api.Post("/webhooks/remove", webhook.RemoveWebhook)

	subscriber := handlers.NewSubscriberHandler(subscriberService)
	api.Get("/subscribers", subscriber.ListSubscribers)
	api.Get("/subscribers/stats", subscriber.SubscriberStats)

	api.Get("/billing/subscription", billing.GetSubscription)
	api.Post("/billing/subscribe", billing.CreateSubscription)
	api.Post("/billing/cancel", billing.CancelSubscription)
	api.Get("/billing/invoices", billing.ListInvoices)
	api.Get("/billing/payment-methods", billing.ListPaymentMethods)
	api.Post("/billing/payment-methods/default", billing.SetDefaultPaymentMethod)
	api.Post("/billing/payment-methods/remove", billing.RemovePaymentMethod)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(connectionRepo, onlyfansService)

	//queue
	queueW := queue.NewQueue(jobRepo, connectionRepo, subscriberRepo, scheduledPostRepo, contentRepo, platformService, contentService, hub)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSyncJob, queueW.HandleSyncJobTask)
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)
		mux.HandleFunc(queue.TaskTypeAnalyzeContent, queueW.HandleAnalyzeContentTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, hub)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, hub *realtime.Hub) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	hub.Disconnect()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
