package flagx

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", ":50051", "-p", "secret"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":50051"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=server.json", "-a", ":50051"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=server.json"},
		},
		{
			name:    "order preserved across forms",
			args:    []string{"--config=first.json", "-c", "second.json", "-x", "1"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-r"},
			allowed: []string{"-r"},
			want:    []string{"-r"},
		},
		{
			name:    "dash token is never taken as a value",
			args:    []string{"-c", "--config=alt.json"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "--config=alt.json"},
		},
		{
			name:    "equals value may start with a dash",
			args:    []string{"--config=--odd.json"},
			allowed: []string{"--config"},
			want:    []string{"--config=--odd.json"},
		},
		{
			name:    "repeated flag kept",
			args:    []string{"-b", "one", "-b", "two"},
			allowed: []string{"-b"},
			want:    []string{"-b", "one", "-b", "two"},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestParse(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	addr := fs.String("a", "", "")
	interval := fs.Int("i", 3, "")

	args := []string{"-c", "client.json", "-a", "chat.example:50051", "-p", "x", "--i=7"}
	require.NoError(t, Parse(fs, args))

	assert.Equal(t, "chat.example:50051", *addr)
	assert.Equal(t, 7, *interval)
}

func TestParse_BadValue(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int("i", 3, "")

	require.Error(t, Parse(fs, []string{"-i", "soon"}))
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/matthias/server.json"}, "/etc/matthias/server.json"},
		{"long", []string{"-config", "/tmp/client.json"}, "/tmp/client.json"},
		{"equals", []string{"--config=/tmp/c.json", "-a", ":1"}, "/tmp/c.json"},
		{"absent", []string{"-a", ":50051", "-p", "pw"}, ""},
		{"last wins", []string{"-c", "/1.json", "-config", "/2.json"}, "/2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
