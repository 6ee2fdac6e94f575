package main

import (
	"os"

	"github.com/hluk/mkgallery/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
