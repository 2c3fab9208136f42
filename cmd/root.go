package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"healthnudge/internal/app"
	"healthnudge/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "healthnudge",
	Short: "Healthnudge CLI App",
	Long: `Healthnudge finds food and fitness venues around a coordinate,
flags the unhealthy ones and suggests healthier alternatives nearby.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		appInstance, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
	// PersistentPostRunE releases the connections PersistentPreRunE opened.
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			appInstance.Close()
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check rule store and cache connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		if appInstance.RuleStore != nil {
			fmt.Println("Checking rule store connectivity...")
			if err := appInstance.RuleStore.Ping(ctx); err != nil {
				return fmt.Errorf("rule store ping failed: %w", err)
			}
			fmt.Println("Rule store connection successful.")
		} else {
			fmt.Println("Rule store not configured, using the compiled-in rule set.")
		}

		if appInstance.RedisClient != nil {
			fmt.Println("Checking redis connectivity...")
			if err := appInstance.RedisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping failed: %w", err)
			}
			fmt.Println("Redis connection successful.")
		}

		fmt.Printf("Rule set: %d categories, %d keyword rules.\n",
			len(appInstance.RuleSet.Categories), len(appInstance.RuleSet.KeywordRules))
		return nil
	},
}
