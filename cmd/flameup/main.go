package main

import (
	"os"

	"github.com/InfernoTsugikuni/FlameUp/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
