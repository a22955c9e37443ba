package main

import (
	"fmt"
	"os"

	"eloquence/cmd/script"
)

func main() {
	if err := script.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
