package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialMetaMerge(t *testing.T) {
	base := MaterialMeta{
		TotalChunks: Ptr(5),
		Diagnostics: map[string]any{"source": "upload", "pages": 12},
	}
	update := MaterialMeta{
		Error:       Ptr("embedding timed out"),
		Diagnostics: map[string]any{"pages": 14, "retries": 2},
	}

	merged := base.Merge(update)

	require.NotNil(t, merged.TotalChunks)
	assert.Equal(t, 5, *merged.TotalChunks)
	require.NotNil(t, merged.Error)
	assert.Equal(t, "embedding timed out", *merged.Error)

	// Update keys win; untouched keys survive.
	assert.Equal(t, "upload", merged.Diagnostics["source"])
	assert.Equal(t, 14, merged.Diagnostics["pages"])
	assert.Equal(t, 2, merged.Diagnostics["retries"])

	// The receiver is left alone.
	assert.Nil(t, base.Error)
	assert.Equal(t, 12, base.Diagnostics["pages"])
}

func TestMaterialMetaMergeEmptyUpdate(t *testing.T) {
	base := MaterialMeta{TotalChunks: Ptr(3), AvgChunkLength: Ptr(120.5)}

	merged := base.Merge(MaterialMeta{})

	assert.Equal(t, 3, *merged.TotalChunks)
	assert.Equal(t, 120.5, *merged.AvgChunkLength)
	assert.Nil(t, merged.Error)
}

func TestMaterialMetaScan(t *testing.T) {
	var meta MaterialMeta
	require.NoError(t, meta.Scan([]byte(`{"total_chunks":7,"error":"boom"}`)))
	assert.Equal(t, 7, *meta.TotalChunks)
	assert.Equal(t, "boom", *meta.Error)

	require.NoError(t, meta.Scan(nil))
	assert.Nil(t, meta.TotalChunks)

	require.NoError(t, meta.Scan(`{"total_chunks":2}`))
	assert.Equal(t, 2, *meta.TotalChunks)

	assert.Error(t, meta.Scan(42))
}
