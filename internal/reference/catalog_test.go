package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("maps:\n  - id: 20\n    name: Droknar's Forge\nprofessions:\n  - id: 3\n    name: Monk\n    alias: Mo\n"), 0o644))
	js := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"maps":[{"id":20,"name":"Droknar's Forge"}],"professions":[{"id":3,"name":"Monk","alias":"Mo"}]}`), 0o644))

	for _, path := range []string{yml, js} {
		c, err := Load(path)
		require.NoError(t, err, path)
		m, ok := c.MapByID(20)
		require.True(t, ok)
		assert.Equal(t, "Droknar's Forge", m.Name)
		p, ok := c.Profession(3)
		require.True(t, ok)
		assert.Equal(t, "Mo", p.Alias)
	}
}

func TestLookups(t *testing.T) {
	c := Builtin()
	m, ok := c.MapByName("  droknar's forge ")
	require.True(t, ok)
	assert.Equal(t, 20, m.ID)

	_, ok = c.MapByID(-1)
	assert.False(t, ok)
	_, ok = c.Profession(99)
	assert.False(t, ok)
	assert.Len(t, c.Professions(), 11)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
