package yaml

import (
	"os"
	"testing"
)

// FuzzDescriptorParser tests the YAML parser against random/malformed inputs
// to detect crashes, panics, or unexpected behavior.
//
// Run with: go test -fuzz=FuzzDescriptorParser -fuzztime=30s
func FuzzDescriptorParser(f *testing.F) {
	for _, name := range []string{"sdk.yml", "sdk-catalog.yml", "sdk-platform.yml"} {
		data, err := os.ReadFile("testdata/" + name)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(data)
	}

	// Seed with edge cases
	f.Add([]byte(``))                                      // Empty input
	f.Add([]byte(`name: ""` + "\n"))                       // Empty name
	f.Add([]byte(`{}`))                                    // Empty JSON-style YAML
	f.Add([]byte(`[]`))                                    // Array instead of object
	f.Add([]byte(`name: test\n  bad`))                     // Invalid indentation
	f.Add([]byte(`name: test\nname: duplicate`))           // Duplicate keys
	f.Add([]byte("name: a\ngroup: b\nversion: ${version}")) // Self reference
	f.Add([]byte("metadata:\n  license: [1, 2]\n"))        // Wrong license shape

	parser := NewDescriptorParser(WithCatalog(stubCatalog{}))

	f.Fuzz(func(_ *testing.T, data []byte) {
		// The parser should handle any input without crashing
		_, _ = parser.Parse(data)
	})
}
