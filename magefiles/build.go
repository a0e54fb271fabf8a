//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed viewer into bin/prism.
func (Build) Viewer() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/prism", "."), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs every package test on the headless renderer, bypassing the test cache.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "./engine/...", "./testbed/..."), withEnv("GOFLAGS=-count=1"), withStream()); err != nil {
		return err
	}
	return nil
}
