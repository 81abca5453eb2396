// Package grammar defines the match sub-command vocabulary and parses raw
// argument strings into typed invocations.
package grammar

import (
	"fmt"
	"io"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/pflag"
)

// OptionKind distinguishes how an option consumes arguments.
type OptionKind int

const (
	// OptionFlag is a boolean switch with no argument.
	OptionFlag OptionKind = iota
	// OptionValue takes a single string argument.
	OptionValue
	// OptionRepeated takes a string argument and may appear multiple times.
	OptionRepeated
)

// Operand is one positional argument of a sub-command.
type Operand struct {
	Name        string
	Required    bool
	Default     string
	Description string
}

// Option is one named option of a sub-command.
type Option struct {
	Name        string
	Short       string
	Kind        OptionKind
	Default     string
	Description string
}

// Command is the schema of one sub-command.
type Command struct {
	Name        string
	Description string
	Operands    []Operand
	Options     []Option
}

// Invocation is the typed result of parsing a raw argument string.
type Invocation struct {
	Command  string
	Operands map[string]string
	Flags    map[string]bool
	Values   map[string]string
	Repeated map[string][]string
}

// UsageError reports invalid input along with the help text the caller should
// show instead of failing hard.
type UsageError struct {
	Help  string
	cause error
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return "invalid command usage"
}

// Unwrap returns the underlying cause.
func (e *UsageError) Unwrap() error {
	return e.cause
}

// Grammar parses raw argument strings against the sub-command schemas.
type Grammar struct {
	commands []Command
	index    map[string]Command
}

// New returns the grammar for the five match sub-commands.
func New() *Grammar {
	commands := []Command{
		{
			Name:        "create",
			Description: "Create a match to vote on",
			Operands: []Operand{
				{Name: "title", Required: true, Description: "Display title of the match."},
				{Name: "period", Default: "24h", Description: "Length voting is allowed. Default: 24h"},
			},
		},
		{
			Name:        "addcompetitor",
			Description: "Add a competitor to a match",
			Operands: []Operand{
				{Name: "match", Required: true, Description: "The match you are adding a competitor to."},
				{Name: "user", Required: true, Description: "The user you are adding."},
				{Name: "data", Description: "Data, if applicable."},
			},
		},
		{
			Name:        "vote",
			Description: "Vote for a match",
			Operands: []Operand{
				{Name: "match", Required: true, Description: "The match you are voting for."},
				{Name: "entry", Required: true, Description: "The entry you are voting for."},
			},
		},
		{
			Name:        "announce",
			Description: "Announce a match",
			Operands: []Operand{
				{Name: "room", Required: true, Description: "Where you would like the match to be announced."},
				{Name: "match", Required: true, Description: "The match you are announcing."},
			},
			Options: []Option{
				{Name: "no-anonymous", Kind: OptionFlag, Description: "Show user names instead of anonymizing options."},
				{Name: "cc", Kind: OptionRepeated, Description: "Add a user or group to be mentioned."},
				{Name: "timezone", Short: "t", Kind: OptionValue, Default: "UTC", Description: "Set the announcement timezone. Default: UTC"},
			},
		},
		{
			Name:        "tally",
			Description: "Get results for a match",
			Operands: []Operand{
				{Name: "match", Required: true, Description: "The match in question."},
			},
			Options: []Option{
				{Name: "no-anonymous", Kind: OptionFlag, Description: "Show user names instead of anonymizing options."},
			},
		},
	}

	index := make(map[string]Command, len(commands))
	for _, command := range commands {
		index[command.Name] = command
	}
	return &Grammar{commands: commands, index: index}
}

// Commands returns the sub-command schemas in declaration order.
func (g *Grammar) Commands() []Command {
	return g.commands
}

// Parse splits raw into a sub-command invocation. Any invalid input returns a
// *UsageError carrying the help text for the faulting sub-command, or the
// full command list when the sub-command itself is unknown.
func (g *Grammar) Parse(raw string) (Invocation, error) {
	words, err := shellquote.Split(raw)
	if err != nil {
		return Invocation{}, &UsageError{Help: g.Help(), cause: fmt.Errorf("split arguments: %w", err)}
	}
	if len(words) == 0 {
		return Invocation{}, &UsageError{Help: g.Help(), cause: fmt.Errorf("missing sub-command")}
	}

	name := strings.ToLower(words[0])
	command, ok := g.index[name]
	if !ok {
		return Invocation{}, &UsageError{Help: g.Help(), cause: fmt.Errorf("unknown sub-command %q", name)}
	}

	flagSet := pflag.NewFlagSet(command.Name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() {}
	for _, option := range command.Options {
		switch option.Kind {
		case OptionFlag:
			flagSet.Bool(option.Name, false, option.Description)
		case OptionValue:
			flagSet.StringP(option.Name, option.Short, option.Default, option.Description)
		case OptionRepeated:
			flagSet.StringArray(option.Name, nil, option.Description)
		}
	}
	if err := flagSet.Parse(words[1:]); err != nil {
		return Invocation{}, &UsageError{Help: g.HelpFor(command.Name), cause: err}
	}

	args := flagSet.Args()
	if len(args) > len(command.Operands) {
		return Invocation{}, &UsageError{
			Help:  g.HelpFor(command.Name),
			cause: fmt.Errorf("too many operands for %s: got %d, want at most %d", command.Name, len(args), len(command.Operands)),
		}
	}

	invocation := Invocation{
		Command:  command.Name,
		Operands: make(map[string]string, len(command.Operands)),
		Flags:    make(map[string]bool),
		Values:   make(map[string]string),
		Repeated: make(map[string][]string),
	}
	for i, operand := range command.Operands {
		value := ""
		if i < len(args) {
			value = args[i]
		}
		if value == "" {
			if operand.Required {
				return Invocation{}, &UsageError{
					Help:  g.HelpFor(command.Name),
					cause: fmt.Errorf("missing required operand <%s> for %s", operand.Name, command.Name),
				}
			}
			value = operand.Default
		}
		invocation.Operands[operand.Name] = value
	}

	for _, option := range command.Options {
		switch option.Kind {
		case OptionFlag:
			enabled, err := flagSet.GetBool(option.Name)
			if err != nil {
				return Invocation{}, &UsageError{Help: g.HelpFor(command.Name), cause: err}
			}
			invocation.Flags[option.Name] = enabled
		case OptionValue:
			value, err := flagSet.GetString(option.Name)
			if err != nil {
				return Invocation{}, &UsageError{Help: g.HelpFor(command.Name), cause: err}
			}
			invocation.Values[option.Name] = value
		case OptionRepeated:
			values, err := flagSet.GetStringArray(option.Name)
			if err != nil {
				return Invocation{}, &UsageError{Help: g.HelpFor(command.Name), cause: err}
			}
			invocation.Repeated[option.Name] = values
		}
	}

	return invocation, nil
}
