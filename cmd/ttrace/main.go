// Tool-to-test traceability scanner.
// Walks Go test files and validates // Covers: annotations against the
// served tool set, so a tool cannot ship without a test that exercises it.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/haobosang/datax-mcp-server/internal/domain/tool"
)

type violation struct {
	Code    string
	Message string
}

var coversRe = regexp.MustCompile(`^//\s*Covers:\s*(.+)$`)

func main() {
	manifestPath := flag.String("manifest", "", "Optional tool manifest YAML (applies enablement overrides)")
	rootDir := flag.String("root", ".", "Project root directory to scan for _test.go files")
	flag.Parse()

	tools, err := toolSet(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR loading manifest: %v\n", err)
		os.Exit(1)
	}

	covered, files, err := scanCovers(*rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR scanning tests: %v\n", err)
		os.Exit(1)
	}

	violations := validate(tools, covered)
	fmt.Printf("=== Tool Traceability Report ===\n")
	fmt.Printf("Tools served: %d\n", len(tools))
	fmt.Printf("Test files scanned: %d\n", len(files))
	fmt.Printf("Covers annotations found: %d\n", len(covered))
	fmt.Printf("Violations: %d\n\n", len(violations))
	for _, v := range violations {
		fmt.Printf("[%s] %s\n", v.Code, v.Message)
	}
	if len(violations) > 0 {
		fmt.Printf("\nFAILED: %d traceability violations found\n", len(violations))
		os.Exit(1)
	}
	fmt.Println("\nPASSED: all served tools have covering tests")
}

// toolSet returns the names of the tools the server would actually serve:
// the builtin set with the manifest's enablement overrides applied.
func toolSet(manifestPath string) ([]string, error) {
	registry := tool.NewRegistry(nil)

	var manifest *tool.Manifest
	if manifestPath != "" {
		m, err := tool.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		manifest = m
	}

	err := tool.RegisterBuiltins(registry, tool.BuiltinServices{}, manifest)
	if err != nil {
		return nil, err
	}

	defs := registry.Definitions()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names, nil
}

// scanCovers walks rootDir for *_test.go files and collects every
// // Covers: annotation, mapping tool name to the files that claim it.
func scanCovers(rootDir string) (map[string][]string, []string, error) {
	covered := make(map[string][]string)
	var files []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// _examples and vendored trees are not part of the served code.
			if strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}

		files = append(files, path)
		names, scanErr := scanFile(path)
		if scanErr != nil {
			return scanErr
		}
		for _, name := range names {
			covered[name] = append(covered[name], path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return covered, files, nil
}

func scanFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := coversRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		for _, name := range strings.Split(m[1], ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return names, nil
}

func validate(tools []string, covered map[string][]string) []violation {
	var violations []violation

	served := make(map[string]bool, len(tools))
	for _, name := range tools {
		served[name] = true
		if len(covered[name]) == 0 {
			violations = append(violations, violation{
				Code:    "UNCOVERED",
				Message: fmt.Sprintf("tool %s has no test with a Covers annotation", name),
			})
		}
	}

	for name, paths := range covered {
		if !served[name] {
			violations = append(violations, violation{
				Code:    "UNKNOWN-TOOL",
				Message: fmt.Sprintf("annotation Covers: %s in %s names no served tool", name, strings.Join(paths, ", ")),
			})
		}
	}

	return violations
}
