package main

import (
	"os"

	"github.com/mechx-labs/mechx/cmd/mechd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
