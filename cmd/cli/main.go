package main

import (
	"os"

	"github.com/dtroode/confreg-server/internal/cli"
)

var buildVersion = "dev" // set by ldflags

func main() {
	os.Exit(cli.Execute(buildVersion))
}
