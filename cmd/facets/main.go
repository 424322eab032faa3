// Command facets builds and runs faceted search queries.
//
// Usage:
//
//	# Fetch online people, ten per page
//	facets fetch people online=yes --limit 10 --config facets.yaml
//
//	# Show how a free-text query is matched
//	facets parse people male online --config facets.yaml
//
//	# List active filters in display form
//	facets humanize people gender=f gender=m --config facets.yaml
//
//	# Check a configuration
//	facets validate --config facets.yaml --config local.cue
//
//	# Run conformance scenarios
//	facets test ./scenarios
package main

import "github.com/roach88/facets/internal/cli"

func main() {
	cli.Execute()
}
