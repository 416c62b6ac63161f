package ingest

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSONL = `{"id":"r1","reviewerId":"u1","reviewText":"Great product","summary":"Great","overall":5}
{"reviewerId":"u2","reviewText":"Broke after a week","summary":"Bad","overall":1}

not json at all
{"id":"r3","reviewerId":"u3","reviewText":"Fine","summary":"","overall":3}
`

func drain(t *testing.T, r *Reader) []string {
	t.Helper()
	var ids []string
	for {
		rev, err := r.Next()
		if err == io.EOF {
			return ids
		}
		require.NoError(t, err)
		ids = append(ids, rev.ID)
	}
}

func TestReader_ParsesJSONL(t *testing.T) {
	r := NewReader(strings.NewReader(sampleJSONL))

	rev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "r1", rev.ID)
	assert.Equal(t, "u1", rev.ReviewerID)
	assert.Equal(t, "Great product", rev.ReviewText)
	assert.Equal(t, 5.0, rev.Overall)

	// Missing ID gets a synthetic one from the emit position.
	rev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "review_1", rev.ID)

	// Blank and malformed lines are skipped.
	rev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "r3", rev.ID)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_OpenPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSONL), 0644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	ids := drain(t, r)
	assert.Equal(t, []string{"r1", "review_1", "r3"}, ids)
}

func TestReader_OpenGzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.json.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleJSONL))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	ids := drain(t, r)
	assert.Equal(t, []string{"r1", "review_1", "r3"}, ids)
}

func TestReader_OpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
