//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "accentcoach"
	mainPkg = "./cmd/accentcoach"
)

// Default target to run when none is specified
var Default = Build

// Build compiles the accentcoach binary into the repository root
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, mainPkg)
}

// Test runs all unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet over all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and copies the binary to $GOPATH/bin
func Install() error {
	mg.Deps(Build)

	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	dest := filepath.Join(gopath, "bin", binary)
	fmt.Println("Installing to", dest)
	return sh.Copy(dest, binary)
}

// Clean removes build artifacts
func Clean() error {
	return os.RemoveAll(binary)
}
