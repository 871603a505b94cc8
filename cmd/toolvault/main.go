// Package main provides the toolvault CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/richinex/toolvault/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "toolvault",
		Short: "Run static-analysis tools and serve their results to review agents",
		Long: `toolvault runs a batch of static-analysis tools against a repository
checkout, normalizes their output into role-scoped finding chunks, and stores
them with embeddings so review agents can retrieve exactly the results that
concern them.

Tools: npm audit, license-checker, madge, dependency-cruiser, npm outdated.
Roles: security, architecture, dependency, educational.`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(resultsCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(purgeCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(insightCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var toolIDs []string
	var scheduled bool

	cmd := &cobra.Command{
		Use:   "run [repository-id] [path]",
		Short: "Execute analysis tools against a checkout and store the results",
		Long: `Execute analysis tools against a repository checkout.

Each successful tool replaces its previous generation of stored results
atomically; failed tools leave their prior results untouched. Without --tool
flags every registered tool runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{Verbose: verbose}
			return cli.RunTools(context.Background(), args[0], args[1], toolIDs, scheduled, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&toolIDs, "tool", "t", nil, "Tool(s) to run (repeatable; default all)")
	cmd.Flags().BoolVar(&scheduled, "scheduled", false, "Mark this run as a scheduled background run")

	return cmd
}

func resultsCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "results [repository-id]",
		Short: "Show the latest stored results for one agent role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{Verbose: verbose}
			return cli.ShowResults(context.Background(), args[0], role, opts)
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", "security", "Agent role (security, architecture, dependency, educational)")

	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [repository-id]",
		Short: "Show whether a repository has stored results and how fresh they are",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ShowSummary(context.Background(), args[0], cli.Options{Verbose: verbose})
		},
	}
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge [repository-id]",
		Short: "Delete all stored results for a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Purge(context.Background(), args[0], cli.Options{Verbose: verbose})
		},
	}
}

func toolsCmd() *cobra.Command {
	var showRoles bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List registered analysis tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(showRoles)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRoles, "roles", false, "Show the agent roles each tool feeds")

	return cmd
}

func insightCmd() *cobra.Command {
	var role string
	var provider string

	cmd := &cobra.Command{
		Use:   "insight [repository-id]",
		Short: "Generate a natural-language digest of one role's results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{Verbose: verbose}
			return cli.Insight(context.Background(), args[0], role, provider, opts)
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", "security", "Agent role to digest")
	cmd.Flags().StringVarP(&provider, "provider", "p", "openai", "LLM provider (openai, anthropic, deepseek, gemini)")

	return cmd
}
