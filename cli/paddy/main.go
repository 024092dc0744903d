package main

import (
	"os"

	paddycmder "github.com/paddyhq/paddy/cmd/paddy"
)

func main() {
	cmd := paddycmder.NewPaddyCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
