package main

import (
	"os"

	"pingcap.com/rere/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
