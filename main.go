package main

import (
	"fmt"
	"os"

	"github.com/thuthu-c/urnai-tools/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
