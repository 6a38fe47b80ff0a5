package main

import (
	"fmt"
	"os"

	"github.com/lbliii/chirp/cmd/chirp/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
