//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Extract runs batch extraction over the completions directory.
func Extract() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "extract", "--batch",
		"--labels", "js,css,html", "--decorators")
}

// Index ingests extraction results into the fragment store.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "fragments", "store")
}
