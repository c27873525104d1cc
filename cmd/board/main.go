package main

import (
	"os"

	"postboard/cmd/board/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
