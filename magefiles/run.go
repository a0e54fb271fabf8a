//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed in a window with prism.toml.
func (Run) Viewer() error {
	mg.Deps(Build.Viewer)
	fmt.Println("Run viewer...")
	if _, err := executeCmd("bin/prism", withArgs("-config", "prism.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed on the headless renderer for a fixed number of frames.
func (Run) Headless() error {
	dir, err := os.MkdirTemp("", "prism-headless")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	scene, err := filepath.Abs("assets/scenes/demo.toml")
	if err != nil {
		return err
	}
	cfg := filepath.Join(dir, "prism.toml")
	content := fmt.Sprintf("name = \"Prism Headless\"\nbackend = \"headless\"\nmax_frames = 240\nscene = %q\n", scene)
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		return err
	}

	fmt.Println("Run headless...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", cfg), withStream()); err != nil {
		return err
	}
	return nil
}
