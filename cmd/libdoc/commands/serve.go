package commands

import (
	"github.com/spf13/cobra"

	"github.com/doctools/libdoc/internal/logging"
	"github.com/doctools/libdoc/internal/web"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated documentation site",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := logging.BuildLogger(logLevel)
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return web.NewServer(cfg, logger).ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}
