// internal/authflow/browser.go
package authflow

import (
	"os/exec"
	"runtime"
)

// openBrowser hands the authorization URL to the system's default handler.
// Fire and forget: there is no feedback channel, the flow relies solely on
// the loopback callback.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
