//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

// Default is the target run by a bare `mage`.
var Default = Build

// Build compiles every package and the viewer binary into bin/.
func Build() error {
	if _, err := executeCmd("go", withArgs("build", "./...")); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", "bin/viewer", "./cmd/viewer"), withStream())
	return err
}

// Test runs the test suite against the recording backend.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// TestDebug runs the test suite with driver checks and the portable limit ceilings enabled.
func TestDebug() error {
	_, err := executeCmd("go", withArgs("test", "-tags", "debug", "./..."), withStream())
	return err
}

// Vet runs go vet over both build configurations.
func Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "-tags", "debug", "./..."), withStream())
	return err
}

// Run builds the viewer and opens the asset named by the ASSET environment variable.
func Run() error {
	mg.Deps(Build)
	args := []string{}
	if cfg := os.Getenv("CONFIG"); cfg != "" {
		args = append(args, "-config", cfg)
	}
	if asset := os.Getenv("ASSET"); asset != "" {
		args = append(args, asset)
	}
	_, err := executeCmd("bin/viewer", withArgs(args...), withStream())
	return err
}

type cmdOptions struct {
	args   []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	fmt.Printf("Executing: %s %s\n", command, strings.Join(opts.args, " "))
	cmd := exec.Command(command, opts.args...)

	streamOutput := mg.Verbose() || opts.stream

	var b bytes.Buffer
	if streamOutput {
		cmd.Stdout = io.MultiWriter(&b, os.Stdout)
		cmd.Stderr = io.MultiWriter(&b, os.Stderr)
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}
	if err := cmd.Run(); err != nil {
		if !streamOutput {
			fmt.Println("... failed command output:")
			fmt.Println(b.String())
		}
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	return b.String(), nil
}
