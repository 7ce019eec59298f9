package installer

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
)

// ShortcutCreator creates a desktop shortcut to an installed game.
// Implementations are platform specific; failures are treated as best
// effort by Finalize.
type ShortcutCreator interface {
	// Create makes a shortcut named after the game pointing at target.
	Create(gameName, target string) error
}

// NewShortcutCreator returns the ShortcutCreator for the current platform.
// Platforms without a shortcut implementation get a no-op.
func NewShortcutCreator() ShortcutCreator {
	if runtime.GOOS == "windows" {
		return &windowsShortcutCreator{}
	}
	return &noopShortcutCreator{}
}

// windowsShortcutCreator writes a .lnk on the user's desktop through a
// temporary VBScript, which avoids cgo and COM bindings.
type windowsShortcutCreator struct{}

func (c *windowsShortcutCreator) Create(gameName, target string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, "finding home dir")
	}
	lnk := filepath.Join(home, "Desktop", gameName+".lnk")

	script := fmt.Sprintf(`Set ws = WScript.CreateObject("WScript.Shell")
Set shortcut = ws.CreateShortcut(%q)
shortcut.TargetPath = %q
shortcut.WorkingDirectory = %q
shortcut.Save
`, lnk, target, filepath.Dir(target))

	scriptPath := filepath.Join(os.TempDir(), "mlx-shortcut-"+slug.Make(gameName)+".vbs")
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return errors.Wrap(err, "writing shortcut script")
	}
	defer os.Remove(scriptPath)

	if out, err := exec.Command("wscript", scriptPath).CombinedOutput(); err != nil {
		return errors.Wrapf(err, "running shortcut script: %s", out)
	}
	return nil
}

// noopShortcutCreator is used on platforms without shortcut support.
type noopShortcutCreator struct{}

func (c *noopShortcutCreator) Create(gameName, target string) error {
	return nil
}
