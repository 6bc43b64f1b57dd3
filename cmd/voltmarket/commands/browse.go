package commands

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tair/voltmarket/cmd/voltmarket/tui"
	"github.com/tair/voltmarket/internal/app"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and search products interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runBrowse)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(ctx context.Context, a *app.App) error {
	c := a.Catalog()
	defer c.Close()

	err := tui.RunBrowse(ctx, c)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
