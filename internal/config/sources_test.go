package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSources_DefaultsWhenUnset(t *testing.T) {
	sources, err := LoadSources("")
	require.NoError(t, err)

	require.Len(t, sources, 3)
	names := []string{sources[0].Name, sources[1].Name, sources[2].Name}
	assert.Equal(t, []string{"crimemapping", "spotcrime", "pa-ucr"}, names)
	for _, s := range sources {
		assert.Equal(t, SourceStub, s.Kind)
		assert.NotEmpty(t, s.URL)
	}
}

func TestLoadSources_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: township-feed
    kind: JSON
    url: https://example.org/incidents.json
  - name: blotter
    kind: scrape
    url: https://example.org/blotter
  - name: spotcrime
    kind: stub
    note: pending API key
`), 0o600))

	sources, err := LoadSources(path)
	require.NoError(t, err)

	assert.Equal(t, []SourceDef{
		{Name: "township-feed", Kind: SourceJSON, URL: "https://example.org/incidents.json"},
		{Name: "blotter", Kind: SourceScrape, URL: "https://example.org/blotter", Selector: "table"},
		{Name: "spotcrime", Kind: SourceStub, Note: "pending API key"},
	}, sources)
}

func TestLoadSources_MissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read sources file")
}

func TestParseSources_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"malformed yaml", "sources: [", "parse sources file"},
		{"missing name", "sources:\n  - kind: stub\n", "name is required"},
		{"duplicate name", "sources:\n  - {name: a, kind: stub}\n  - {name: a, kind: stub}\n", "duplicate name"},
		{"unknown kind", "sources:\n  - {name: a, kind: ftp}\n", "unknown kind"},
		{"json without url", "sources:\n  - {name: a, kind: json}\n", "url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSources([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSources_Empty(t *testing.T) {
	sources, err := ParseSources([]byte("sources: []\n"))
	require.NoError(t, err)
	assert.Empty(t, sources)
}
