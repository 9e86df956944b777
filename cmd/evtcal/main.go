package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/evtcal-api/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "evtcal:", err)
		os.Exit(1)
	}
}
