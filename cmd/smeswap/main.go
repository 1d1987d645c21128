package main

import (
	"os"

	"github.com/r3troseer/SME-loan-transact/cmd/smeswap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
