package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyike/FinSightGo/config"
	"github.com/dyike/FinSightGo/internal/agent"
	"github.com/dyike/FinSightGo/internal/assistant"
	"github.com/dyike/FinSightGo/internal/dataflows"
	"github.com/dyike/FinSightGo/internal/display"
	"github.com/dyike/FinSightGo/internal/tools"
)

const version = "1.0.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configPath string
	var mgr *config.Manager
	getMgr := func() *config.Manager { return mgr }

	rootCmd := &cobra.Command{
		Use:   "finsight",
		Short: "FinSightGo - Conversational Financial Analyst",
		Long: `FinSightGo answers natural-language financial questions grounded in real
financial-statement data. An AI assistant decides which statements it needs,
FinSightGo fetches them from the Financial Modeling Prep API and feeds them
back until a final answer is produced.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			mgr, err = config.NewManager(config.WithConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := mgr.Get()
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start the interactive chat
			return runChat(cmd.Context(), mgr)
		},
	}

	rootCmd.AddCommand(newAskCmd(getMgr))
	rootCmd.AddCommand(newQuoteCmd(getMgr))
	rootCmd.AddCommand(newConfigCmd(getMgr))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path")

	return rootCmd
}

// buildAnalyst wires the assistant client and the data retrieval tools
// into an orchestration loop for the given configuration.
func buildAnalyst(cfg *config.Config) (*agent.Analyst, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	client := assistant.NewClient(cfg)
	fmp := dataflows.NewFMPClient(cfg)
	quotes := dataflows.NewQuoteClient(cfg)
	registry := tools.NewRegistry(fmp, quotes)

	return agent.NewAnalyst(cfg, client, registry), nil
}

// newAskCmd creates the one-shot question command
func newAskCmd(getMgr func() *config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single financial question and exit",
		Long: `Ask one natural-language financial question and print the answer.
Example: finsight ask "What is Apple's revenue growth over the last 4 quarters?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getMgr().Get()
			analyst, err := buildAnalyst(&cfg)
			if err != nil {
				return err
			}
			defer func() { _ = analyst.Close(context.Background()) }()

			question := strings.Join(args, " ")

			spinner := display.NewSpinner("Analyzing financial data")
			spinner.Start()
			answer, err := analyst.Ask(cmd.Context(), question)
			spinner.Stop()

			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			fmt.Println(display.AssistantTurn(answer))
			return nil
		},
	}
}

// newQuoteCmd creates the quote lookup command
func newQuoteCmd(getMgr func() *config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "quote [TICKER]",
		Short: "Show the current quote for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getMgr().Get()
			quotes := dataflows.NewQuoteClient(&cfg)

			q, err := quotes.GetQuote(args[0])
			if err != nil {
				return fmt.Errorf("quote lookup failed: %w", err)
			}

			fmt.Printf("%s (%s)\n", q.Symbol, q.Date)
			fmt.Printf("  price  %s\n", q.Price.StringFixed(2))
			fmt.Printf("  open   %s\n", q.Open.StringFixed(2))
			fmt.Printf("  high   %s\n", q.High.StringFixed(2))
			fmt.Printf("  low    %s\n", q.Low.StringFixed(2))
			fmt.Printf("  volume %d\n", q.Volume)
			return nil
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(getMgr func() *config.Manager) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := getMgr()
			cfg := mgr.Get()
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			fmt.Println(display.Hint("file: " + mgr.Path() + " (credentials come from the environment)"))
			return nil
		},
	})

	return configCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("FinSightGo v%s\n", version)
			fmt.Println("Conversational Financial Analyst")
		},
	}
}
