// Package browser hands article URLs to the system opener.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/wikinsight/internal/config"
	"github.com/pders01/wikinsight/internal/validation"
)

type Launcher struct {
	opener    string
	goos      string
	validator *validation.EndpointValidator
	start     func(cmd *exec.Cmd) error
}

func NewLauncher(cfg config.BrowserConfig) *Launcher {
	opener := cfg.Opener
	if opener == "" {
		opener = defaultOpener(runtime.GOOS)
	}
	return &Launcher{
		opener:    opener,
		goos:      runtime.GOOS,
		validator: validation.NewEndpointValidator(),
		start:     startDetached,
	}
}

func defaultOpener(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

// Open launches the opener on rawURL. Only http(s) URLs are accepted.
func (l *Launcher) Open(rawURL string) error {
	u, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}

	cmd := l.command(u)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.opener, err)
	}
	return nil
}

func (l *Launcher) command(u string) *exec.Cmd {
	// start is a cmd.exe builtin; the empty string is the window title.
	if l.goos == "windows" && l.opener == "start" {
		return exec.Command("cmd", "/c", "start", "", u)
	}
	return exec.Command(l.opener, u)
}

// startDetached starts GUI applications without waiting for them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
