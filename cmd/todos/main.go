// Command todos runs the todo API server and its command-line client.
package main

import (
	"os"

	"github.com/mesh-intelligence/todos/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
