package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
	"github.com/stretchr/testify/require"
)

// scenarioPath returns the path of a scenario under testdata/scenarios.
// In Bazel tests it is found in the runfiles; otherwise it is resolved from
// the module root, found by walking up to go.mod.
func scenarioPath(t *testing.T, name string) string {
	t.Helper()
	rel := filepath.Join("testdata", "scenarios", name)
	if p, err := bazel.Runfile(rel); err == nil {
		return p
	}

	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, rel)
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "go.mod not found")
		dir = parent
	}
}

// execute runs the root command with args and returns its stdout and stderr.
// Flag variables are reset first since they outlive a single execution.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	verbose = false
	bindDump = false
	bindColor = "auto"
	bindPathMap = nil
	bindJobs = 0
	bindLegacy = false
	bindNoExpanded = false
	bindFailOnErr = false
	codesCategory = ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}
