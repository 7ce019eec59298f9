package installer

import (
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// Launch starts an installed game executable from its install directory
// and returns without waiting for it to exit.
func Launch(executable, dir string) error {
	cmd := exec.Command(filepath.Join(dir, executable))
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "launching %s", executable)
	}

	// Detach; the game process outlives the launcher.
	return cmd.Process.Release()
}
