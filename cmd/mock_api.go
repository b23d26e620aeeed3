package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/timada-org/tablesync/internal/entity"
	"github.com/timada-org/tablesync/internal/fakeapi"
	"github.com/timada-org/tablesync/internal/seed"
)

var (
	mockAPIAddr string

	mockAPICmd = &cobra.Command{
		Use:   "mock-api",
		Short: "Run an in-memory people and todos REST API",

		RunE: func(cmd *cobra.Command, args []string) error {
			api := fakeapi.New(fakeapi.Options{
				Collections: []fakeapi.Collection{
					{Name: entity.People.Name, Fields: entity.People.Fields, Clearable: entity.People.Clearable},
					{Name: entity.Todos.Name, Fields: entity.Todos.Fields, Clearable: entity.Todos.Clearable},
				},
				Logger: logger,
			})

			fixtures := seed.Default()
			for _, p := range fixtures.People {
				api.Seed(entity.People.Name, p.Fields())
			}
			for _, t := range fixtures.Todos {
				api.Seed(entity.Todos.Name, t.Fields())
			}

			logger.Info("mock api listening", "addr", mockAPIAddr)

			if err := http.ListenAndServe(mockAPIAddr, api); err != nil {
				return fmt.Errorf("mock-api: %w", err)
			}

			return nil
		},
	}
)

func init() {
	mockAPICmd.Flags().StringVar(&mockAPIAddr, "addr", ":8080", "listen address")
}
