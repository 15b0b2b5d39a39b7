package toml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogTOML = `
[versions]
slf4j = "2.0.9"
guava = { strictly = "31.1-jre" }

[libraries]
slf4j-api = { module = "org.slf4j:slf4j-api", version.ref = "slf4j" }
guava = { group = "com.google.guava", name = "guava", version.ref = "guava" }
junit_jupiter = "org.junit.jupiter:junit-jupiter:5.10.0"
pubsub = { module = "com.google.cloud:google-cloud-pubsub" }

[plugins]
nexusPublish = { id = "io.github.gradle-nexus.publish-plugin", version = "1.3.0" }
`

func TestParse_Libraries(t *testing.T) {
	c, err := Parse([]byte(catalogTOML))
	require.NoError(t, err)

	tests := []struct {
		alias string
		want  string
	}{
		{"slf4j.api", "org.slf4j:slf4j-api:2.0.9"},
		{"slf4j-api", "org.slf4j:slf4j-api:2.0.9"},
		{"guava", "com.google.guava:guava:31.1-jre"},
		{"junit.jupiter", "org.junit.jupiter:junit-jupiter:5.10.0"},
		{"pubsub", "com.google.cloud:google-cloud-pubsub"},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			dep, err := c.Library(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dep.String())
		})
	}

	_, err = c.Library("missing")
	assert.True(t, errors.Is(err, ErrUnknownAlias))

	assert.Equal(t, []string{"guava", "junit.jupiter", "pubsub", "slf4j.api"}, c.Aliases())

	id, ok := c.Plugin("nexusPublish")
	assert.True(t, ok)
	assert.Equal(t, "io.github.gradle-nexus.publish-plugin", id)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"bad toml":        "[libraries\n",
		"unknown ref":     "[libraries]\na = { module = \"g:a\", version.ref = \"nope\" }\n",
		"bad notation":    "[libraries]\na = \"g:a\"\n",
		"no coordinates":  "[libraries]\na = { version = \"1.0\" }\n",
		"bad rich":        "[versions]\nv = { reject = \"1.0\" }\n",
		"bad module":      "[libraries]\na = { module = \"ga\" }\n",
		"bad entry shape": "[libraries]\na = 5\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, c, "missing catalog is not an error")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "gradle"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultCatalogPath), []byte(catalogTOML), 0600))

	c, err = Load(dir)
	require.NoError(t, err)
	dep, err := c.Library("slf4j.api")
	require.NoError(t, err)
	assert.Equal(t, "2.0.9", dep.Version)
}
