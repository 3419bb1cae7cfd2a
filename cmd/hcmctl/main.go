package main

import (
	"log"
	"os"

	"github.com/hcm-labs/hcm/internal/cmd"
)

func main() {
	log.SetFlags(log.LstdFlags)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
