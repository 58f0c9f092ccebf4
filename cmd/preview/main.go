// cmd/preview/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Corphon/ReelBoard/internal/client"
	"github.com/Corphon/ReelBoard/internal/tui"
	"github.com/Corphon/ReelBoard/internal/utils"
)

const defaultServerURL = "http://localhost:8080"

func main() {
	rootCmd, err := newRootCommand()
	if err == nil {
		err = rootCmd.Execute()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, error) {
	v := viper.New()
	v.SetEnvPrefix("REELBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "reelboard-preview",
		Short: "🎬 Terminal storyboard wizard for a ReelBoard server",
		Long: `reelboard-preview walks through the five storyboard steps against a running
ReelBoard server: topic, script, images, audio and a simulated video preview.

Examples:
  reelboard-preview                         # start a new project
  reelboard-preview --project <id>          # reopen a project
  reelboard-preview projects                # list projects on the server
  REELBOARD_SERVER_URL=http://host:8080 reelboard-preview`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWizard(cmd.Context(), newClient(v), v.GetString("project"))
		},
	}

	rootCmd.PersistentFlags().String("server", defaultServerURL, "ReelBoard server URL (env REELBOARD_SERVER_URL)")
	rootCmd.Flags().String("project", "", "Open an existing project by id")
	if err := v.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server")); err != nil {
		return nil, fmt.Errorf("failed to bind --server: %w", err)
	}
	if err := v.BindPFlag("project", rootCmd.Flags().Lookup("project")); err != nil {
		return nil, fmt.Errorf("failed to bind --project: %w", err)
	}
	v.SetDefault("server_url", defaultServerURL)

	rootCmd.AddCommand(newProjectsCommand(v))
	return rootCmd, nil
}

func newProjectsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := newClient(v)
			projects, err := api.ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list projects on %s: %w", api.BaseURL(), err)
			}
			if len(projects) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No projects yet on %s\n", api.BaseURL())
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tSCENES\tCREATED\tTOPIC")
			for _, p := range projects {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Status, len(p.Scenes), p.CreatedAt.Format("2006-01-02 15:04"), p.Topic)
			}
			return w.Flush()
		},
	}
}

func newClient(v *viper.Viper) *client.Client {
	return client.New(v.GetString("server_url"), nil)
}

func runWizard(parent context.Context, api *client.Client, projectID string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 日志会破坏终端界面
	utils.GetLogger().SetOutput(nil)

	model := tui.New(ctx, api, tui.Options{ProjectID: projectID})
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run wizard: %w", err)
	}
	return nil
}
