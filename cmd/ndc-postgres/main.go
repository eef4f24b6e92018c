// Command ndc-postgres is the connector's entry point: initialize, update,
// and serve subcommands, wired in internal/cli.
package main

import "github.com/hasura/ndc-postgres-go/internal/cli"

func main() {
	cli.Execute()
}
