package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// extension installs an executable shell script named fcalc-<name> in a
// directory prepended to PATH.
func extension(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell extensions are not supported on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fcalc-"+name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("Failed to write extension: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestExtensionMechanism(t *testing.T) {
	extension(t, "hello", `echo "args=$*"
echo "$FCALC_CONFIG|$FCALC_VERBOSE|$FCALC_LOGGING_LEVEL"
read line
echo "stdin=$line"
`)

	oldConfig, oldVerbose := *configPath, *Verbose
	*configPath, *Verbose = "/tmp/fcalc.yaml", true
	t.Cleanup(func() { *configPath, *Verbose = oldConfig, oldVerbose })

	var stdout, stderr bytes.Buffer
	found, code := runExtension("hello", []string{"a", "b"}, strings.NewReader("ping\n"), &stdout, &stderr)
	if !found {
		t.Fatal("extension not found")
	}
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{
		"args=a b",
		"/tmp/fcalc.yaml|true|debug",
		"stdin=ping",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, but got:\n%s", want, output)
		}
	}
}

func TestExtensionExitCode(t *testing.T) {
	extension(t, "broken", "exit 3\n")

	var stdout, stderr bytes.Buffer
	found, code := runExtension("broken", nil, strings.NewReader(""), &stdout, &stderr)
	if !found || code != 3 {
		t.Errorf("runExtension() = %v, %d, want true, 3", found, code)
	}
}

func TestExtensionNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	found, code := runExtension("missing", nil, nil, nil, nil)
	if found || code != 0 {
		t.Errorf("runExtension() = %v, %d, want false, 0", found, code)
	}
}

func TestIsCommand(t *testing.T) {
	for _, name := range []string{"project", "value", "session", "rate", "serve", "explain", "assist", "topic", "help"} {
		if !IsCommand(name) {
			t.Errorf("IsCommand(%q) = false", name)
		}
	}
	if IsCommand("hello") {
		t.Error("IsCommand(\"hello\") = true")
	}
}
