package main

import (
	"log"

	"github.com/anoixa/image-vault/config"

	"github.com/anoixa/image-vault/cmd"
)

func main() {
	log.Printf("image vault %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
