package main

import (
	"github.com/axellelanca/urlregistry/cmd"
	_ "github.com/axellelanca/urlregistry/cmd/cli"
	_ "github.com/axellelanca/urlregistry/cmd/server"
)

func main() {
	cmd.Execute()
}
