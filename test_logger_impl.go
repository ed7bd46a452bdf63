package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ryffproject/api-contract-tests/framework"
)

type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(
	id framework.TestID,
	failed bool,
	elapsed time.Duration,
	debugOutput framework.CapturedOutput,
) {
	seconds := fmt.Sprintf("(%.2fs)", elapsed.Seconds())
	if failed {
		fmt.Fprintf(c.Out, "  %s: %s %s\n", color.RedString("FAILED"), id, seconds)
	} else {
		fmt.Fprintf(c.Out, "  %s %s\n", color.GreenString("passed"), seconds)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "  %s: %s\n", color.YellowString("SKIPPED"), id)
	} else {
		fmt.Fprintf(c.Out, "  %s: %s (%s)\n", color.YellowString("SKIPPED"), id, reason)
	}
}
