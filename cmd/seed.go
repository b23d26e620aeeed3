package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/timada-org/tablesync/internal/seed"
)

var (
	seedFile    string
	seedReset   bool
	seedTimeout time.Duration

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the fixture people and todos through the REST API",

		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := seed.Load(seedFile)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
			defer cancel()

			runner := seed.New(seed.Options{
				BaseURL: appConfig.APIURL,
				Logger:  logger,
				Reset:   seedReset,
			})

			return runner.Run(ctx, fixtures)
		},
	}
)

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "fixtures file (default is the built-in fixtures)")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "clear todos before seeding")
	seedCmd.Flags().DurationVar(&seedTimeout, "timeout", 10*time.Second, "how long to wait for the API to acknowledge every write")
}
