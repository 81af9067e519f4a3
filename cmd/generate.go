package cmd

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "planboard.com/planboard/internal/configs"
	repository "planboard.com/planboard/internal/repositories"
	"planboard.com/planboard/internal/services"
)

var generateDate string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Materialize recurrence instances for a date",
	Long:  "Runs the recurrence generator once for the given date (defaults to today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		db := config.New(cfg.DatabaseDSN)

		date := time.Now()
		if generateDate != "" {
			parsed, err := services.ParseDate(generateDate)
			if err != nil {
				return err
			}
			date = parsed
		}

		taskRepo := repository.NewTaskRepository(db)
		planRepo := repository.NewPlanRepository(db)
		generator := services.NewGeneratorService(taskRepo, planRepo)

		count, err := generator.GenerateForDate(context.Background(), date)
		if err != nil {
			return err
		}

		log.Printf("created %d instance(s) for %s", count, date.Format("2006-01-02"))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateDate, "date", "", "target date in YYYY-MM-DD form")
	rootCmd.AddCommand(generateCmd)
}
