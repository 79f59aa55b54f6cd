package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	dir := t.TempDir()
	script := `#!/bin/sh
echo "` + EnvDataDir + `=$` + EnvDataDir + `"
echo "` + EnvCurrency + `=$` + EnvCurrency + `"
echo "` + EnvDebug + `=$` + EnvDebug + `"
echo "args=$*"
exit 3
`
	if err := os.WriteFile(filepath.Join(dir, "cfd-hello"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	out := withGlobals(t, filepath.Join(dir, "data"), "XYZ")

	found, code := RunExtension("hello", []string{"a", "b"})
	if !found || code != 3 {
		t.Fatalf("RunExtension() = %v, %d, want true, 3", found, code)
	}
	for _, want := range []string{
		EnvDataDir + "=" + filepath.Join(dir, "data"),
		EnvCurrency + "=XYZ",
		EnvDebug + "=false",
		"args=a b",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("extension output missing %q:\n%s", want, out)
		}
	}

	if found, _ := RunExtension("missing", nil); found {
		t.Error("RunExtension() found a missing extension")
	}
}

// withGlobals sets the global flags for the duration of the test and
// captures the command outputs.
func withGlobals(t *testing.T, dir, cur string) *bytes.Buffer {
	t.Helper()
	oldDir, oldCur, oldRaw, oldOut := *dataDir, *currency, *raw, stdout
	t.Cleanup(func() { *dataDir, *currency, *raw, stdout = oldDir, oldCur, oldRaw, oldOut })

	var out bytes.Buffer
	*dataDir, *currency, *raw, stdout = dir, cur, true, &out
	return &out
}
