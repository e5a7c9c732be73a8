package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"gpay"}, args...)
	t.Cleanup(func() { os.Args = saved })
}

func TestRun_Help(t *testing.T) {
	withArgs(t, "help")
	assert.Equal(t, 0, run())
}

func TestRun_FailureReturnsExitCode(t *testing.T) {
	t.Setenv("GPAY_API_KEY", "")
	t.Setenv("GPAY_SECRET_KEY", "")
	t.Setenv("GPAY_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "error")
	withArgs(t, "balance")

	assert.Equal(t, 1, run())
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Setenv("GPAY_API_KEY", "key")
	t.Setenv("GPAY_SECRET_KEY", "secret")
	t.Setenv("GPAY_PASSWORD", "password")
	t.Setenv("GPAY_ENVIRONMENT", "dev")
	t.Setenv("JOURNAL_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	withArgs(t, "refund")

	assert.Equal(t, 1, run())
}
