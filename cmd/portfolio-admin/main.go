package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"github.com/rpupo63/portfolio-backend/client"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/security"
	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

var baseURL string

var rootCmd = &cobra.Command{
	Use:           "portfolio-admin",
	Short:         "Admin tooling for the portfolio API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Read projects (public endpoints)",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := client.New(baseURL).ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		return writeProjectTable(cmd.OutOrStdout(), projects)
	},
}

var projectsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one project as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		project, err := client.New(baseURL).GetProject(cmd.Context(), id)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), project)
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive admin session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s. Type 'help' for commands.\n", baseURL)
		return newShell(client.New(baseURL), line, cmd.OutOrStdout()).Run(cmd.Context())
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		hash, err := promptPasswordHash(line)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

type passwordReader interface {
	PasswordPrompt(prompt string) (string, error)
}

func promptPasswordHash(in passwordReader) (string, error) {
	password, err := in.PasswordPrompt("password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	confirm, err := in.PasswordPrompt("repeat password: ")
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", errors.New("passwords do not match")
	}

	return security.HashPassword(password)
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url",
		config.GetString(config.New(), "PORTFOLIO_API_URL", defaultBaseURL), "portfolio API base URL")

	projectsCmd.AddCommand(projectsListCmd, projectsGetCmd)
	rootCmd.AddCommand(projectsCmd, shellCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
