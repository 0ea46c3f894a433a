// Package main is the entry point for serverless-cost-calculator.
package main

import (
	"os"

	"github.com/sunxiaoguang/serverless-cost-calculator/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
