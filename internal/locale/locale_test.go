package locale

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	l, ok := Label("ja")
	assert.True(t, ok)
	assert.Equal(t, "日本語", l)

	l, ok = Label(" PT-BR ")
	assert.True(t, ok)
	assert.Equal(t, "Português do Brasil", l)

	_, ok = Label("xx")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	codes, err := Resolve([]string{"de", "English", "de", " ", "zh-CN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en", "zh-cn"}, codes)

	codes, err = Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, codes)

	_, err = Resolve([]string{"klingon"})
	require.Error(t, err)
}

func TestTargets(t *testing.T) {
	single := Targets("docs", "demo", []string{"en"})
	assert.Equal(t, []Target{{Code: "en", Dir: "docs"}}, single)

	single = Targets("docs", "demo", []string{"de"})
	assert.Equal(t, []Target{{Code: "de", Hint: "Deutsch", Dir: "docs"}}, single)

	multi := Targets("docs", "demo", []string{"en", "ko"})
	require.Len(t, multi, 2)
	assert.Equal(t, Target{Code: "en", Hint: "English", Dir: filepath.Join("docs", "en", "demo")}, multi[0])
	assert.Equal(t, "한국어", multi[1].Hint)
}
