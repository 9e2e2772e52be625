// Command cqlsolr converts CQL statements to Solr query parameters.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cqlsolr/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cqlsolr:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
