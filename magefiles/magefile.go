//go:build mage

// Package main provides build targets for the todos project using Mage.
//
// Usage:
//
//	mage build      Compile the todos binary to bin/
//	mage test       Run all tests with the race detector
//	mage testShort  Run tests in short mode
//	mage lint       Run golangci-lint
//	mage serve      Build and run the API server
//	mage clean      Remove build artifacts
//	mage install    Install todos to GOPATH/bin
//	mage stats      Print Go lines of code per package
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "todos"
	binaryDir  = "bin"
	cmdDir     = "./cmd/todos"
	versionVar = "github.com/mesh-intelligence/todos/internal/cli.Version"
)

// version describes the checked-out commit, or "dev" outside a git tree.
func version() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		return "dev"
	}
	return v
}

// Build compiles the todos binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := fmt.Sprintf("-X %s=%s", versionVar, version())
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// TestShort runs tests in short mode without the race detector.
func TestShort() error {
	return sh.RunV(binGo, "test", "-short", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Serve builds the binary and runs the API server in the foreground.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "serve")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Stats prints production and test Go lines per package.
func Stats() error {
	type lines struct{ prod, test int }
	perPkg := map[string]*lines{}

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch path {
			case ".git", "vendor", binaryDir, "_examples", "magefiles":
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		count, err := countLines(path)
		if err != nil {
			return err
		}
		pkg := filepath.Dir(path)
		if perPkg[pkg] == nil {
			perPkg[pkg] = &lines{}
		}
		if strings.HasSuffix(path, "_test.go") {
			perPkg[pkg].test += count
		} else {
			perPkg[pkg].prod += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	pkgs := make([]string, 0, len(perPkg))
	for pkg := range perPkg {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	var total lines
	fmt.Printf("%-20s %8s %8s\n", "package", "prod", "test")
	for _, pkg := range pkgs {
		l := perPkg[pkg]
		fmt.Printf("%-20s %8d %8d\n", pkg, l.prod, l.test)
		total.prod += l.prod
		total.test += l.test
	}
	fmt.Printf("%-20s %8d %8d\n", "total", total.prod, total.test)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
