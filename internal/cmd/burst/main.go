// Command burst generates and collects pseudo-TCP traffic. Use it to
// exercise the medium: `burst send` plays the sender while `burst sink`
// plays the receiver.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Command is the common interface of commands.
type Command interface {
	// Main is the main function implementing the command.
	Main(args []string)

	// BriefDescription returns a brief description of the command.
	BriefDescription() string

	// Help returns the help string for the command.
	Help() string
}

// HelpCmd is the help command.
type HelpCmd struct{}

// Main is the main of the `burst help` command.
func (cmd *HelpCmd) Main(args []string) {
	if len(args) < 2 {
		usage(os.Stdout)
		os.Exit(0)
	}
	if len(args) > 2 {
		fmt.Fprintf(os.Stderr, "%s\n", cmd.Help())
		os.Exit(1)
	}
	if cmd := Commands[args[1]]; cmd != nil {
		fmt.Printf("%s\n", cmd.Help())
		os.Exit(0)
	}
	fmt.Fprintf(os.Stderr, "burst help: no such command: '%s'.\n", args[1])
	fmt.Fprint(os.Stderr, "Use `burst help` for more comprehensive help.\n")
	os.Exit(1)
}

// BriefDescription returns a brief description of the command.
func (cmd *HelpCmd) BriefDescription() string {
	return "provides information about commands"
}

// Help returns the help string for the command.
func (cmd *HelpCmd) Help() string {
	return `
usage: burst help [command]

If no command is specified, prints the general usage message for
burst. Otherwise, prints the usage message for <command>.
`
}

// Commands maps a command name to a command.
var Commands = map[string]Command{
	"help": &HelpCmd{},
	"send": &SendCmd{},
	"sink": &SinkCmd{},
}

// usage prints the program usage.
func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: burst command [options...]\n\n")
	fmt.Fprintf(w, "This program sends and receives pseudo-TCP packets.\n\n")
	fmt.Fprintf(w, "Available commands:\n\n")
	var names []string
	for name := range Commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "- %s: %s.\n\n", name, Commands[name].BriefDescription())
	}
	fmt.Fprintf(w, "Use `burst help <command>` to get help about a command.\n\n")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		os.Exit(0)
	}
	command := os.Args[1]
	if command == "-h" || command == "--help" {
		usage(os.Stdout)
		os.Exit(0)
	}
	if cmd := Commands[command]; cmd != nil {
		cmd.Main(os.Args[1:])
		os.Exit(0)
	}
	usage(os.Stderr)
	os.Exit(1)
}
