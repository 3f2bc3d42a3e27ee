package main

import (
	"os"

	"tax-calculator/cmd/taxcalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
