package cmd

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/timada-org/tablesync/internal/config"
)

var (
	cfgFile string
	apiURL  string

	appConfig *config.Config
	logger    *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "tablesync",
		Short: "Keep people and todos tables in sync with a REST API",
		Long: `Tablesync serves a page listing people and todos. Every edit goes to the
REST API and the tables are redrawn from a fresh read once the API confirms it.`,
		SilenceUsage: true,
	}
)

// setup loads .env, the config file and flag overrides, then installs the
// configured logger.
func setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if rootCmd.PersistentFlags().Changed("api-url") {
		c.APIURL = apiURL
	}

	if err := c.Validate(); err != nil {
		return err
	}

	l, err := c.Logger(nil)
	if err != nil {
		return err
	}

	slog.SetDefault(l)
	appConfig, logger = c, l

	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return setup()
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "REST API origin, overrides api_url")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(mockAPICmd)
}
