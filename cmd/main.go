package main

import (
	"os"

	"focusguard/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
