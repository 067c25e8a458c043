package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/basicbundles/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for -h")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"check", "--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_BrokenManifest(t *testing.T) {
	t.Parallel()

	// A manifest with a syntax error fails the build, not the flag parsing.
	dir := t.TempDir()
	path := filepath.Join(dir, "site.hcl")
	require.NoError(t, os.WriteFile(path, []byte("script \"a\" {\n"), 0600))

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"check", "-m", path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load manifests")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		err     error
		want    int
		wantOut string
	}{
		{"success", nil, 0, ""},
		{"usage", &cli.ExitError{Code: 2, Message: "bad flag"}, 2, "bad flag\n"},
		{"failure", errors.New("boom"), 1, "boom\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			errW := &bytes.Buffer{}
			require.Equal(t, tc.want, exitCode(tc.err, errW))
			require.Equal(t, tc.wantOut, errW.String())
		})
	}
}
