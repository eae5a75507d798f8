// Package browser opens URLs in the system's default browser.
package browser

import (
	"errors"
	"os/exec"
	"runtime"
)

// ErrEmptyURL is returned when Open is called without a URL.
var ErrEmptyURL = errors.New("browser: empty URL")

// Command returns the program and arguments that open url on goos.
func Command(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default: // linux, freebsd, ...
		return "xdg-open", []string{url}
	}
}

// Open starts the platform opener for url and returns without waiting for it.
func Open(url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	name, args := Command(runtime.GOOS, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child in the background so it doesn't linger as a zombie.
	go cmd.Wait()
	return nil
}
