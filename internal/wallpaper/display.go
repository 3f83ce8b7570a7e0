package wallpaper

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Display puts an image on screen.
type Display interface {
	SetWallpaper(ctx context.Context, image string) error
}

// CommandDisplay runs a user supplied shell command. Every %s in Template is
// replaced by the image path or URL, passed as a positional argument so it
// never needs quoting.
type CommandDisplay struct {
	Template string
	Shell    string
}

// SetWallpaper implements Display.
func (d CommandDisplay) SetWallpaper(ctx context.Context, image string) error {
	if strings.TrimSpace(d.Template) == "" {
		log.WithField("image", image).Info("No SetWallpaperCommand configured, not changing the desktop")
		return nil
	}
	shell := d.Shell
	if shell == "" {
		shell = "sh"
	}
	script := strings.ReplaceAll(d.Template, "%s", `"$1"`)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", script, "wallpaper", image)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("set wallpaper command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	log.WithField("image", image).Debug("Wallpaper command finished")
	return nil
}
