package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	Execute()
}

// fatal prints msg and err to stderr and exits with status 1.
func fatal(msg string, err error) {
	fmt.Fprintf(color.Error, "%s %v\n", color.RedString(msg+":"), err)
	os.Exit(1)
}
