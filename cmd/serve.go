package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"planboard.com/planboard/internal/cache"
	config "planboard.com/planboard/internal/configs"
	httpapi "planboard.com/planboard/internal/http"
	repository "planboard.com/planboard/internal/repositories"
	"planboard.com/planboard/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the planboard HTTP API and the daily recurrence generator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()

		redisClient := config.NewRedisClient(cfg.RedisAddr)
		var roleCache cache.AccessCache
		if redisClient != nil {
			defer redisClient.Close()
			roleCache = cache.NewRedisAccessCache(
				redisClient,
				time.Duration(cfg.AccessCacheTTLSeconds)*time.Second,
			)
		}

		db := config.New(cfg.DatabaseDSN)

		membershipRepo := repository.NewMembershipRepository(db)
		workspaceRepo := repository.NewWorkspaceRepository(db)
		planRepo := repository.NewPlanRepository(db)
		taskRepo := repository.NewTaskRepository(db)
		subtaskRepo := repository.NewSubtaskRepository(db)
		categoryRepo := repository.NewCategoryRepository(db)
		commentRepo := repository.NewCommentRepository(db)

		accessService := services.NewAccessService(membershipRepo, workspaceRepo, roleCache)
		recurrenceService := services.NewRecurrenceService(taskRepo, planRepo)
		taskService := services.NewTaskService(taskRepo, subtaskRepo, planRepo, accessService, recurrenceService)
		planService := services.NewPlanService(planRepo, taskRepo, commentRepo, accessService)
		categoryService := services.NewCategoryService(categoryRepo, accessService)
		workspaceService := services.NewWorkspaceService(workspaceRepo, accessService)
		generator := services.NewGeneratorService(taskRepo, planRepo)

		scheduler := services.NewSchedulerService(time.UTC)
		if _, err := scheduler.ScheduleDaily(cfg.GenerateTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			count, err := generator.GenerateForDate(jobCtx, time.Now())
			if err != nil {
				log.Printf("recurrence generation failed: %v", err)
				return
			}
			log.Printf("recurrence generation created %d instance(s)", count)
		}); err != nil {
			log.Fatalf("schedule generator: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()

		e := echo.New()
		handler := httpapi.NewHandler(taskService, planService, categoryService, workspaceService)
		httpapi.Register(e, handler, cfg.RateLimit)

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(ctx)

		log.Println("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
