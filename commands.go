package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

var (
	configPath string
	category   string
	mode       string
)

var rootCmd = &cobra.Command{
	Use:   "reel-pipeline",
	Short: "Generate a narrated short-form reel and publish it",
	Long: `Runs one full pass: script → scenes → visuals → narration →
subtitles → render → upload. Use "schedule" to run on a cron.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runOnce(cmd.Context(), cfg)
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on the schedule.cron expression until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runScheduled(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&category, "category", "", "reel category (default: random from config)")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "override config mode: images | stock")
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	// Load .env (local dev only)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("❌ %v", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if mode != "" {
		cfg.Mode = mode
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if category != "" && !contains(cfg.Categories, category) {
		log.Printf("⚠️  Category %q is not in config categories %v", category, cfg.Categories)
	}
	return cfg, nil
}

// runOnce builds the stages and runs a single reel
func runOnce(ctx context.Context, cfg *config.Config) error {
	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state, err := p.Run(ctx, pickCategory(cfg, category, rng))
	if err != nil {
		if types.IsFatal(err) {
			log.Printf("❌ Pipeline aborted: %v", err)
		}
		return err
	}
	if state.Video != nil {
		log.Printf("✅ Pipeline complete! Video: %s", state.Video.Path)
	}
	for _, pub := range state.Published {
		log.Printf("✅ Published to %s: %s", pub.Target, pub.URL)
	}
	return nil
}

// runScheduled fires runOnce on the cron expression. A run still in
// progress makes the next tick a no-op.
func runScheduled(ctx context.Context, cfg *config.Config) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(cfg.Schedule.Cron, func() {
		if err := runOnce(ctx, cfg); err != nil {
			log.Printf("❌ Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule.cron %q: %w", cfg.Schedule.Cron, err)
	}

	log.Printf("⏰ Scheduler started (%s). Ctrl+C to stop.", cfg.Schedule.Cron)
	c.Start()
	<-ctx.Done()

	log.Println("Stopping scheduler, waiting for the running job...")
	<-c.Stop().Done()
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
