// Package main provides the repost command.
package main

import (
	"os"

	"github.com/mcastorina/repost/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
