package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/avitaltamir/vaultwalker/internal/app"
	"github.com/avitaltamir/vaultwalker/internal/clipboard"
	"github.com/avitaltamir/vaultwalker/internal/config"
	"github.com/avitaltamir/vaultwalker/internal/logging"
	"github.com/avitaltamir/vaultwalker/internal/vault"
)

var version = "dev"

var (
	flagAddr      string
	flagToken     string
	flagTokenFile string
	flagPath      string
	flagTraceLog  string
)

var rootCmd = &cobra.Command{
	Use:     "vw",
	Short:   "Browse and edit secrets from the terminal",
	Version: version,
	Long: `vw is an interactive terminal browser for a versioned key/value
secret store. It navigates folders, views and edits secret values,
and keeps a local cache so browsing stays responsive when the server
is slow or unreachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app.Version = version

		if flagTraceLog != "" {
			logging.Configure(flagTraceLog)
			logging.SetTraceEnabled(true)
		}

		cfg, err := config.Resolve(flagAddr, flagToken, flagTokenFile, flagPath)
		if err != nil {
			return err
		}

		client, err := vault.NewHTTPClient(cfg.Addr, cfg.Token)
		if err != nil {
			return err
		}

		p := tea.NewProgram(
			app.New(client, cfg, clipboard.System{}),
			tea.WithAltScreen(),
		)
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "server address (default $VAULT_ADDR)")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "auth token (default $VAULT_TOKEN, then the token file)")
	rootCmd.Flags().StringVar(&flagTokenFile, "token-file", "", "file to read the token from, watched for rotation (default ~/.vault-token)")
	rootCmd.Flags().StringVarP(&flagPath, "path", "p", "", "root path to browse (default secret)")
	rootCmd.Flags().StringVar(&flagTraceLog, "trace-log", "", "append trace events to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}
