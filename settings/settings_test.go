package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 300*1024, d.MaxPduSize)
	assert.Equal(t, 3_000_000, d.MaxPixels)
	assert.True(t, d.AllowDeliveryReports)
}

func TestFileProviderWildcardAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := `
sims:
  "*":
    user_agent: "generic-agent"
    max_pdu_size: 1024
  "234100000000000":
    mmsc_url: "http://mmsc.example/"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadFileProvider(path)
	require.NoError(t, err)

	generic, err := p.SettingsForIMSI("999999999999999")
	require.NoError(t, err)
	assert.Equal(t, "generic-agent", generic.UserAgent)
	assert.Equal(t, 1024, generic.MaxPduSize)
	assert.Empty(t, generic.MMSCURL)

	specific, err := p.SettingsForIMSI("234100000000000")
	require.NoError(t, err)
	assert.Equal(t, "generic-agent", specific.UserAgent)
	assert.Equal(t, "http://mmsc.example/", specific.MMSCURL)
}

func TestFileProviderMissingFile(t *testing.T) {
	_, err := LoadFileProvider("/nonexistent/settings.yaml")
	assert.Error(t, err)
}
