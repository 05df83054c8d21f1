package main

import (
	"os"

	"github.com/mschot/dbcalm-open-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
