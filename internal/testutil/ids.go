package testutil

// FixedIDGenerator generates the same fetch ID every time.
//
// This enables deterministic test execution and golden output comparison:
// the same scenario produces byte-identical results.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed fetch ID generator.
//
// If id is empty, Generate() returns "test-fetch-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-fetch-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed fetch ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
