package main

import (
	"os"

	"github.com/MarJC5/slabs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
