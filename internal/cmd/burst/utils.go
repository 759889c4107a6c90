package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/mitchellh/go-wordwrap"
	"github.com/ooni/medium/internal/logx"
	"github.com/pborman/getopt/v2"
)

// makeHelp creates the help string for a command given the
// command itself and its options parser.
func makeHelp(cmd Command, getopt *getopt.Set) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "usage: %s %s%s\n\n", getopt.Program(), getopt.UsageLine(), getopt.Parameters())
	fmt.Fprintf(&sb, "%s\n\n", wordwrap.WrapString("This command "+cmd.BriefDescription()+".", 72))
	fmt.Fprintf(&sb, "Available options:\n")
	getopt.PrintOptions(&sb)
	return sb.String()
}

// mustNotHavePositionalArguments exits with an error message
// if the parsed options contain any positional argument.
func mustNotHavePositionalArguments(getopt *getopt.Set, name string) {
	if len(getopt.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "burst %s: unexpected positional arguments after options.\n", name)
		fmt.Fprintf(os.Stderr, "Run `burst help %s` for more help.\n", name)
		os.Exit(1)
	}
}

// fatalOnError calls os.Exit(1) in case err is an error.
func fatalOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %s\n", err.Error())
		os.Exit(1)
	}
}

// newLogger returns the logger used by commands.
func newLogger(verbose bool) *log.Logger {
	return logx.NewLogger(logx.NewHandlerWithDefaultSettings(), verbose)
}
