package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/stretchr/testify/assert"

	"github.com/ryffproject/api-contract-tests/framework"
)

func TestConsoleTestLoggerOutput(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	logger := &ConsoleTestLogger{Out: &out, DebugOutputOnFailure: true}
	id := framework.TestID{Path: []string{"delete upvote"}}

	logger.TestStarted(id)
	logger.TestError(id, errors.New("upvote count was not updated\nexpected 0, got 1"))
	logger.TestFinished(id, true, 1500*time.Millisecond, framework.CapturedOutput{
		{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Message: "POST /delete-upvote.php"},
	})

	text := out.String()
	assert.Contains(t, text, "[delete upvote]\n")
	assert.Contains(t, text, "  upvote count was not updated\n  expected 0, got 1\n")
	assert.Contains(t, text, "  FAILED: delete upvote (1.50s)\n")
	assert.Contains(t, text, "DEBUG ")
	assert.Contains(t, text, "POST /delete-upvote.php")
}

func TestConsoleTestLoggerHidesDebugOutputForPassingTests(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	logger := &ConsoleTestLogger{Out: &out, DebugOutputOnFailure: true}
	id := framework.TestID{Path: []string{"login"}}

	logger.TestFinished(id, false, 250*time.Millisecond, framework.CapturedOutput{{Message: "secret"}})
	logger.TestSkipped(framework.TestID{Path: []string{"logout"}}, "excluded by filter parameters")

	assert.Equal(t, "  passed (0.25s)\n  SKIPPED: logout (excluded by filter parameters)\n", out.String())
}
