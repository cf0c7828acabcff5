package main

import (
	"os"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
