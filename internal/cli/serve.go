package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xeitosa/socialai/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI",
	RunE:  runServe,
}

var (
	flagPort int
	flagHost string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "Port to listen on (overrides PORT, default 8501)")
	serveCmd.Flags().StringVar(&flagHost, "host", "", "Interface to bind (default all)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.ProviderErr != nil {
		a.Log.Warn("Generation disabled until a provider key is configured", "error", a.ProviderErr)
	}

	srv, err := web.New(a)
	if err != nil {
		return err
	}

	port := a.Config.Port
	if flagPort != 0 {
		port = flagPort
	}
	return srv.Start(cmd.Context(), fmt.Sprintf("%s:%d", flagHost, port))
}
