// Package harness runs faceted-search conformance scenarios.
//
// A scenario seeds a fresh in-memory SQLite database, loads a facet
// configuration and runs a sequence of fetches, checking each one against
// its expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: online_people
//	description: "Paging through online people"
//	config: ../people.yaml          # relative to the scenario file
//	fetch_id: test-fetch-online     # optional fixed fetch ID
//	setup:
//	  - CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, is_online INTEGER)
//	  - INSERT INTO people VALUES (1, 'ann', 1), (2, 'bob', 0)
//	steps:
//	  - model: people
//	    modifiers: { online: "yes", limit: 1 }
//	    expect:
//	      count: 1                  # records returned
//	      total: 1                  # records matched, ignoring paging
//	      page: 0
//	      conditions: { online: "yes" }
//	      humanized: { online: "yes" }
//	      remains: ""
//	      field: name
//	      values: [ann]
//
// Every expect key is optional. Conditions and humanized are subset matches;
// values compare the field of every returned record, in order. Values are
// compared by their string form, so 3 matches an INTEGER column holding 3.
package harness
