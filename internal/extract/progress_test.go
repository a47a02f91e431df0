package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressMonotone(t *testing.T) {
	p := NewProgress(nil)

	p.SetPercent(10)
	p.SetPercent(40)
	p.SetPercent(25) // ignored: progress never moves backwards
	assert.Equal(t, 40, p.Percent())

	p.SetPercent(150) // clamped
	assert.Equal(t, 100, p.Percent())
}

func TestProgressCallback(t *testing.T) {
	var seen []int
	p := NewProgress(func(v int) { seen = append(seen, v) })

	p.SetPercent(10)
	p.SetPercent(10) // no advance, no callback
	p.SetPercent(50)
	p.SetPercent(100)

	assert.Equal(t, []int{10, 50, 100}, seen)
}

func TestResolveFreeName(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, "a.jpg", resolveFreeName(dir, "a.jpg"))

	touch := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	touch("a.jpg")
	assert.Equal(t, "a_1.jpg", resolveFreeName(dir, "a.jpg"))
	touch("a_1.jpg")
	assert.Equal(t, "a_2.jpg", resolveFreeName(dir, "a.jpg"))

	// extensionless names get suffixed at the end
	touch("burst-folder")
	assert.Equal(t, "burst-folder_1", resolveFreeName(dir, "burst-folder"))
}
