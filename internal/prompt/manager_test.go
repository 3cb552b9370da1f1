package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallsBackToBuiltin(t *testing.T) {
	m := NewManager("")
	assert.Equal(t, builtin[CoachUser], m.Get(CoachUser))
	assert.Empty(t, m.Get("no_such_template"))
}

func TestLoadDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coach_user.txt"), []byte("custom coach %s"), 0o644))

	m := NewManager(dir)
	assert.Equal(t, "custom coach %s", m.Get(CoachUser))
	// 目录里没有的模板仍然用内置值
	assert.Equal(t, builtin[TipsSystem], m.Get(TipsSystem))
}

func TestLoadManifestAndTxtPrecedence(t *testing.T) {
	dir := t.TempDir()
	manifest := "coach_user: manifest coach %s\ntips_system: manifest tips\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestName), []byte(manifest), 0o644))
	// .txt 覆盖清单
	require.NoError(t, os.WriteFile(filepath.Join(dir, "coach_user.txt"), []byte("file coach %s"), 0o644))

	m := NewManager(dir)
	assert.Equal(t, "file coach %s", m.Get(CoachUser))
	assert.Equal(t, "manifest tips", m.Get(TipsSystem))
}

func TestReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report_user.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1 %s %s"), 0o644))

	m := NewManager(dir)
	assert.Equal(t, "v1 %s %s", m.Get(ReportUser))

	require.NoError(t, os.WriteFile(path, []byte("v2 %s %s"), 0o644))
	require.NoError(t, m.Load())
	assert.Equal(t, "v2 %s %s", m.Get(ReportUser))
}

func TestBuiltinPlaceholders(t *testing.T) {
	// 带参模板必须保留 %s 占位
	for _, name := range []string{EvidenceUser, CoachUser, DecomposeUser, RefineUser, TipsUser, PlanUser, ReportUser} {
		assert.Contains(t, builtin[name], "%s", name)
	}
}
