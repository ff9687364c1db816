package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffPreservesStream(t *testing.T) {
	body := "%PDF-1.4\n" + strings.Repeat("x", 5000)

	ct, r, err := Sniff(strings.NewReader(body))
	require.NoError(t, err)
	assert.True(t, IsPDF(ct))

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, body, string(out))
}

func TestSniffShortInput(t *testing.T) {
	ct, r, err := Sniff(strings.NewReader("hi"))
	require.NoError(t, err)
	assert.False(t, IsPDF(ct))

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(out))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("application/pdf", "x.bin"))
	assert.Equal(t, "application/pdf", ContentTypeFor("application/octet-stream", "report.PDF"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("", "noext"))
}
