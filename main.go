package main

import (
	"log"

	"github.com/timada-org/tablesync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
