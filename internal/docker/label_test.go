package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestToolFilter verifies that configured paths reduce to the label value
// a container is tagged with.
func TestToolFilter(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"ferium", "ferium-companion.tool=ferium"},
		{"/usr/local/bin/ferium", "ferium-companion.tool=ferium"},
		{`C:\tools\ferium.exe`, "ferium-companion.tool=ferium.exe"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			assert.Equal(t, tt.want, ToolFilter(tt.tool))
		})
	}
}

func TestParseExecSettings(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
		want   ExecSettings
	}{
		{
			name:   "no labels",
			labels: nil,
			want:   ExecSettings{},
		},
		{
			name: "workdir and user",
			labels: map[string]string{
				LabelTool:    "ferium",
				LabelWorkdir: "/data/minecraft",
				LabelUser:    " minecraft ",
			},
			want: ExecSettings{WorkingDir: "/data/minecraft", User: "minecraft"},
		},
		{
			name:   "relative workdir is ignored",
			labels: map[string]string{LabelWorkdir: "data"},
			want:   ExecSettings{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExecSettings(tt.labels))
		})
	}
}
