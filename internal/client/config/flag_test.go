package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	defaults := func() *Config {
		c := &Config{}
		c.ServerEndpointAddr = "127.0.0.1:50051"
		c.AppRoot = "/home/alice/.config/Matthias"
		c.SyncInterval = 3 * time.Second
		c.RequestTimeout = 10 * time.Second
		c.LogLevel = "warn"
		return c
	}

	tests := []struct {
		name      string
		args      []string
		want      func(c *Config)
		wantPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "chat.example:9090", "-r", "/tmp/m", "-i", "10", "-t", "4", "-l", "debug"},
			want: func(c *Config) {
				c.ServerEndpointAddr = "chat.example:9090"
				c.AppRoot = "/tmp/m"
				c.SyncInterval = 10 * time.Second
				c.RequestTimeout = 4 * time.Second
				c.LogLevel = "debug"
			},
		},
		{
			name: "no flags keep defaults",
			args: nil,
			want: func(*Config) {},
		},
		{
			name: "config file and foreign flags ignored",
			args: []string{"-c", "client.json", "-p", "pw", "-i", "5"},
			want: func(c *Config) { c.SyncInterval = 5 * time.Second },
		},
		{name: "bad interval", args: []string{"-i", "abc"}, wantPanic: true},
		{name: "bad timeout", args: []string{"-t", "soon"}, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = append([]string{"matthias"}, tt.args...)
			got := defaults()

			if tt.wantPanic {
				require.Panics(t, func() { parseFlags(got) })
				return
			}

			require.NotPanics(t, func() { parseFlags(got) })
			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}
