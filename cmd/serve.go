package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/timada-org/tablesync/internal/web"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the tablesync page server",

		RunE: func(cmd *cobra.Command, args []string) error {
			addr := listenAddr(cmd)

			server := web.New(web.Options{
				APIURL: appConfig.APIURL,
				Logger: logger,
			})

			logger.Info("listening", "addr", addr, "api_url", appConfig.APIURL)

			if err := http.ListenAndServe(addr, server); err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			return nil
		},
	}
)

func listenAddr(cmd *cobra.Command) string {
	if cmd.Flags().Changed("addr") {
		return serveAddr
	}
	return appConfig.Addr
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides addr")
}
