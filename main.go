package main

import (
	"os"

	"github.com/matrixise/balance-board/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
