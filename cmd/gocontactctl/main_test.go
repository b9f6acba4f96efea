package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`OTP code is (\d{4})\.`)

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	cfg := "hash:\n  algorithm: sha256\n" +
		"mail:\n  from: ctl@example.com\n" +
		"sqlite:\n  dsn: " + filepath.Join(dir, "otp.db") + "\n" +
		"modules:\n  otp:\n    code_digits: 4\n    store:\n      driver: sqlite\n"

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(append([]string{"gocontactctl", "--config", cfgPath}, args...))
	return stdout.String(), stderr.String(), err
}

func TestCLI_SQLiteLifecycle(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migration(s) applied")

	out, _, err = run(t, cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "0 migration(s) applied")

	out, logs, err := run(t, cfg, "issue", "--email", "jane@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, usecase.MsgSent)

	m := codePattern.FindStringSubmatch(logs)
	require.Len(t, m, 2, "mail log: %s", logs)
	code := m[1]

	_, _, err = run(t, cfg, "verify", "--email", "jane@example.com", "--otp", "0000")
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "got %v", err)
	assert.Equal(t, usecase.MsgInvalidOTP, gerr.Msg())

	out, _, err = run(t, cfg, "verify", "--email", "jane@example.com", "--otp", code)
	require.NoError(t, err)
	assert.Contains(t, out, "verified jane@example.com")

	_, _, err = run(t, cfg, "verify", "--email", "jane@example.com", "--otp", code)
	require.Error(t, err)

	out, _, err = run(t, cfg, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0 expired record(s)")
}

func TestCLI_IssueRateLimited(t *testing.T) {
	cfg := writeConfig(t)

	_, _, err := run(t, cfg, "migrate", "--driver", "sqlite")
	require.NoError(t, err)

	_, _, err = run(t, cfg, "issue", "--email", "rate@example.com")
	require.NoError(t, err)

	_, _, err = run(t, cfg, "issue", "--email", "rate@example.com")
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "got %v", err)
	assert.Equal(t, usecase.MsgRateLimited, gerr.Msg())
}

func TestCLI_Errors(t *testing.T) {
	t.Run("missing config", func(t *testing.T) {
		_, _, err := run(t, filepath.Join(t.TempDir(), "nope.yaml"), "sweep")
		require.Error(t, err)
	})

	t.Run("memory has no migrations", func(t *testing.T) {
		_, _, err := run(t, writeConfig(t), "migrate", "--driver", "memory")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no migrations")
	})

	t.Run("required flag", func(t *testing.T) {
		_, _, err := run(t, writeConfig(t), "verify", "--email", "a@example.com")
		require.Error(t, err)
	})
}
