package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/ft/internal/core"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "drops unknown trailing token",
			args: []string{"--update", "-c", "a.conf", "--trace", "extra"},
			want: []string{"--update", "-c", "a.conf", "--trace"},
		},
		{
			name: "equals spelling",
			args: []string{"--config=a.conf", "--yes", "--disableplugin=spinner"},
			want: []string{"--config=a.conf", "--disableplugin=spinner"},
		},
		{
			name: "equals on unknown or no value option",
			args: []string{"--output=plain", "--trace=true"},
			want: nil,
		},
		{
			name: "glued short option",
			args: []string{"-ca.conf", "--inventory"},
			want: []string{"-ca.conf", "--inventory"},
		},
		{
			name: "stops at double dash",
			args: []string{"--update", "--", "--trace"},
			want: []string{"--update"},
		},
		{
			name: "keeps order of repeated options",
			args: []string{"-v", "--extra-plugin-config", "x.conf", "-v", "-c", "y.conf"},
			want: []string{"-v", "--extra-plugin-config", "x.conf", "-v", "-c", "y.conf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterArgs(firstPassNoValue, firstPassValue, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--update", "-c"},
		{"-c", "--trace"},
		{"--disableplugin", "-"},
	} {
		_, err := FilterArgs(firstPassNoValue, firstPassValue, args)
		assert.ErrorIs(t, err, core.ErrOptions, "%v", args)
	}
}
