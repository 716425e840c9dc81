package main

import (
	cmd "github.com/cozy-creator/dbi/cmd/dbi"
)

func main() {
	cmd.Execute()
}
