package main

import (
	"github.com/precise-imaging/radflow-mcp/cmd"
)

func main() {
	cmd.Execute()
}
