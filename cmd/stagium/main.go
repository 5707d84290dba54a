package main

import (
	"fmt"
	"os"

	"github.com/interpretive-systems/stagium/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stagium:", err)
		os.Exit(1)
	}
}
