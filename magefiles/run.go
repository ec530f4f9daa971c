//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Run groups targets that build the CLI and run a typical export.
type Run mg.Namespace

func binary() string {
	return filepath.Join(binDir, binName)
}

// Search exports trials for QUERY (default terms when unset) in both formats.
func (Run) Search() error {
	mg.Deps(Build, Init)
	return sh.RunV(binary(), "search", "--format", "both", "--query", queryEnv())
}

// Interventional exports interventional trials for QUERY.
func (Run) Interventional() error {
	mg.Deps(Build, Init)
	return sh.RunV(binary(), "interventional", "search", "--query", queryEnv())
}

// Phases analyzes phases and exports phase dates for QUERY.
func (Run) Phases() error {
	mg.Deps(Build, Init)
	if err := sh.RunV(binary(), "phases", "analyze", "--query", queryEnv()); err != nil {
		return err
	}
	return sh.RunV(binary(), "phases", "export", "--query", queryEnv())
}

func queryEnv() string {
	return os.Getenv("QUERY")
}
