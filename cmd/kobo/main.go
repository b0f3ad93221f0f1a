package main

import (
	"os"

	"github.com/kobo-ledger/kobo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
