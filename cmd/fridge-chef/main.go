package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"fridge-chef/internal/chef"
	"fridge-chef/internal/config"
	"fridge-chef/internal/database"
	"fridge-chef/internal/llm"
	"fridge-chef/internal/metrics"
	"fridge-chef/internal/recipe"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "suggest":
		if len(os.Args) < 3 {
			fmt.Println("Usage: fridge-chef suggest <ingredient> [ingredient...]")
			os.Exit(1)
		}
		if err := suggest(cfg, os.Args[2:]); err != nil {
			fmt.Println(chef.UserMessage(err))
			log.Fatalf("Suggest failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		if cfg.MetricsDBPath == "" {
			log.Fatalf("METRICS_DB_PATH is not set")
		}
		db, err := database.NewDB(cfg.MetricsDBPath)
		if err != nil {
			log.Fatalf("Failed to open metrics database: %v", err)
		}
		defer db.Close()

		affected, err := metrics.NewStore(db.SQL).Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func suggest(cfg *config.Config, ingredients []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout)
	defer cancel()

	var gen llm.JSONGenerator
	g, closer, err := llm.NewFromConfig(ctx, cfg)
	if err != nil && !errors.Is(err, llm.ErrMissingAPIKey) {
		return err
	}
	if err == nil {
		gen = g
		if closer != nil {
			defer closer.Close()
		}
	}

	var recorder chef.UsageRecorder
	if cfg.MetricsDBPath != "" {
		db, err := database.NewDB(cfg.MetricsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open metrics database: %w", err)
		}
		defer db.Close()
		recorder = metrics.NewStore(db.SQL)
	}

	recipes, err := chef.New(gen, recorder).Suggest(ctx, ingredients)
	if err != nil {
		return err
	}
	for i, r := range recipes {
		printRecipe(i+1, r)
	}
	return nil
}

func printRecipe(n int, r recipe.Recipe) {
	fmt.Printf("%d. %s (%s kcal)\n", n, r.Name, r.Calories)
	fmt.Printf("   %s\n", r.Description)
	fmt.Printf("   ⏱ %s · %s\n", r.CookingTime, r.Difficulty)
	if len(r.UsedIngredients) > 0 {
		fmt.Printf("   Có sẵn: %s\n", strings.Join(r.UsedIngredients, ", "))
	}
	if r.HasMissing() {
		fmt.Printf("   Cần mua: %s\n", strings.Join(r.MissingIngredients, ", "))
	}
	for j, step := range r.Steps {
		fmt.Printf("   %d) %s\n", j+1, step)
	}
	fmt.Println()
}

func printUsage() {
	fmt.Println("Usage: fridge-chef <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  suggest <ingredients...>   Ask the AI chef for recipes")
	fmt.Println("  metrics-cleanup -days N    Remove old metric records")
}
