package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.txt")
	require.NoError(t, os.WriteFile(path, []byte("--- Extracted Text ---\n1. Payment\nbody"), 0644))

	text, err := File{Path: path}.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "--- Extracted Text ---\n1. Payment\nbody", text)
}

func TestFileMissing(t *testing.T) {
	_, err := File{Path: "/nonexistent/contract.txt"}.Text(context.Background())
	assert.Error(t, err)
}

func TestFileInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte{'a', 0xff, 'b'}, 0644))

	text, err := File{Path: path}.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a�b", text)
}

func TestExtractHTML(t *testing.T) {
	doc := `<html><head><title>Agreement</title><style>p{color:red}</style></head>
<body><h2>1. Payment Terms</h2><p>The Customer shall   pay
within <b>30 days</b>.</p><script>var x = 1;</script><h2>2. Termination</h2><p>Either party may terminate.</p></body></html>`

	text, err := ExtractHTML(doc)
	require.NoError(t, err)
	assert.Equal(t, "Agreement\n1. Payment Terms\nThe Customer shall pay within 30 days.\n2. Termination\nEither party may terminate.", text)
}

func TestOpenByExtension(t *testing.T) {
	assert.IsType(t, HTML{}, Open("a/contract.HTML"))
	assert.IsType(t, File{}, Open("a/contract.txt"))
}
