package lib

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCode(t *testing.T) {
	t.Setenv("TEMP_DIR", t.TempDir())
	p, err := GenerateQRCode("RENT-000001")
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = GenerateQRCode("")
	assert.Error(t, err)
}
