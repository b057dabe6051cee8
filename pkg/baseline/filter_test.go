package baseline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/sitesmith/pkg/config"
)

const testDataset = `{
	"flexbox":    {"baseline": "high", "css_properties": ["display", "flex-direction", "justify-content"]},
	"grid":       {"baseline": "high", "css_properties": ["display", "grid-template-columns"]},
	"container-queries": {"baseline": "low", "css_properties": ["container-type"]},
	"anchor-positioning": {"baseline": "false", "css_properties": ["anchor-name"]}
}`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web-features.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPropertiesUnionOfHighFeatures(t *testing.T) {
	f := NewFilter(&config.BaselineConfig{Dataset: writeDataset(t, testDataset)})

	props := f.Properties(context.Background())

	assert.Equal(t, []string{"display", "flex-direction", "grid-template-columns", "justify-content"}, props)
	assert.True(t, f.Allows("display"))
	assert.False(t, f.Allows("container-type"), "low-baseline property must be excluded")
	assert.False(t, f.Allows("anchor-name"))
}

func TestMissingDatasetDegradesToNonBinding(t *testing.T) {
	f := NewFilter(&config.BaselineConfig{Dataset: filepath.Join(t.TempDir(), "nope.json")})

	props := f.Properties(context.Background())

	assert.Empty(t, props)
	assert.True(t, f.Allows("display"), "empty set makes the constraint non-binding")
	assert.True(t, f.Allows("anything-at-all"))
}

func TestMalformedDatasetDegradesToNonBinding(t *testing.T) {
	f := NewFilter(&config.BaselineConfig{Dataset: writeDataset(t, "not json at all")})

	assert.Empty(t, f.Properties(context.Background()))
	assert.True(t, f.Allows("display"))
}

func TestDatasetLoadedOnce(t *testing.T) {
	path := writeDataset(t, testDataset)
	f := NewFilter(&config.BaselineConfig{Dataset: path})

	first := f.Properties(context.Background())
	require.NotEmpty(t, first)

	// Replacing the file after first use must not change the cached set;
	// the dataset is static per deployment and never reloaded.
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	second := f.Properties(context.Background())
	assert.Equal(t, first, second)
}

func TestPropertiesHonorsCancellation(t *testing.T) {
	f := NewFilter(&config.BaselineConfig{Dataset: writeDataset(t, testDataset)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Holding a read lock keeps the first load from publishing, so the
	// canceled caller cannot be satisfied by a completed load and must
	// return the non-binding set instead of blocking.
	f.mu.RLock()
	props := f.Properties(ctx)
	f.mu.RUnlock()

	assert.Empty(t, props)

	// The load still completed in the background and warmed the cache.
	assert.NotEmpty(t, f.Properties(context.Background()))
}

func TestConcurrentFirstAccess(t *testing.T) {
	f := NewFilter(&config.BaselineConfig{Dataset: writeDataset(t, testDataset)})

	var wg sync.WaitGroup
	results := make([][]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Properties(context.Background())
		}(i)
	}
	wg.Wait()

	for _, props := range results {
		assert.Equal(t, results[0], props)
	}
}
