package main

import (
	"fmt"
	"os"

	"github.com/averin/marque/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "marque: %v\n", err)
		os.Exit(1)
	}
}
