package cli

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openURL hands a URL to the configured browser command, falling back
// to the platform opener. The browser is detached and owns its own
// lifetime.
func openURL(rawURL string) error {
	var c *exec.Cmd
	if cfg.Shell.Browser != "" {
		c = exec.Command(cfg.Shell.Browser, rawURL)
	} else {
		switch runtime.GOOS {
		case "darwin":
			c = exec.Command("open", rawURL)
		case "windows":
			c = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
		default:
			c = exec.Command("xdg-open", rawURL)
		}
	}

	if err := c.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return c.Process.Release()
}
