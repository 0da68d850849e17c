package browser

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/wikinsight/internal/config"
)

func TestDefaultOpener(t *testing.T) {
	assert.Equal(t, "open", defaultOpener("darwin"))
	assert.Equal(t, "start", defaultOpener("windows"))
	assert.Equal(t, "xdg-open", defaultOpener("linux"))
	assert.Equal(t, "xdg-open", defaultOpener("freebsd"))
}

func TestNewLauncher_FallsBackToDefaultOpener(t *testing.T) {
	l := NewLauncher(config.BrowserConfig{})
	assert.NotEmpty(t, l.opener)

	l = NewLauncher(config.BrowserConfig{Opener: "firefox"})
	assert.Equal(t, "firefox", l.opener)
}

func TestLauncher_Open(t *testing.T) {
	var started *exec.Cmd
	l := NewLauncher(config.BrowserConfig{Opener: "my-browser"})
	l.goos = "linux"
	l.start = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	require.NoError(t, l.Open("https://en.wikipedia.org/wiki/Alan_Turing"))
	require.NotNil(t, started)
	assert.Equal(t, []string{"my-browser", "https://en.wikipedia.org/wiki/Alan_Turing"}, started.Args)
}

func TestLauncher_OpenWindowsStart(t *testing.T) {
	l := NewLauncher(config.BrowserConfig{Opener: "start"})
	l.goos = "windows"

	cmd := l.command("https://en.wikipedia.org/wiki/Alan_Turing")
	assert.Equal(t, []string{"cmd", "/c", "start", "", "https://en.wikipedia.org/wiki/Alan_Turing"}, cmd.Args)
}

func TestLauncher_OpenRejectsNonHTTP(t *testing.T) {
	l := NewLauncher(config.BrowserConfig{Opener: "my-browser"})
	l.start = func(cmd *exec.Cmd) error {
		t.Fatal("should not start anything")
		return nil
	}

	for _, u := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "not a url"} {
		assert.Error(t, l.Open(u), "url %q", u)
	}
}

func TestLauncher_OpenStartFailure(t *testing.T) {
	l := NewLauncher(config.BrowserConfig{Opener: "missing-binary"})
	l.start = func(cmd *exec.Cmd) error {
		return errors.New("executable file not found")
	}

	err := l.Open("https://en.wikipedia.org/wiki/Alan_Turing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing-binary")
}
