package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRunResetsOtherStates(t *testing.T) {
	states := []string{"no_updates", "done", "aborted"}
	now := time.Unix(1700000000, 0)

	RecordRun("aborted", states, now)
	RecordRun("done", states, now)

	assert.Equal(t, 1.0, testutil.ToFloat64(LastRun.WithLabelValues("done")))
	assert.Equal(t, 0.0, testutil.ToFloat64(LastRun.WithLabelValues("aborted")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(LastRunTimestamp))
}

func TestWriteTextfile(t *testing.T) {
	InstallsTotal.WithLabelValues(OutcomeInstalled).Inc()
	path := filepath.Join(t.TempDir(), "ft.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ft_package_installs_total{outcome="installed"}`)
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "ft.prom"))
	assert.Error(t, err)
}
