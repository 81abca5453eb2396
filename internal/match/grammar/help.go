package grammar

import (
	"fmt"
	"strings"
)

// Help returns the full command list with one-line descriptions.
func (g *Grammar) Help() string {
	var b strings.Builder
	b.WriteString("Usage: match <command> [operands] [options]\n\nCommands:\n")
	for _, command := range g.commands {
		fmt.Fprintf(&b, "  %-14s %s\n", command.Name, command.Description)
	}
	b.WriteString("\nRun a command with missing operands to see its usage.")
	return b.String()
}

// HelpFor returns the usage text for one sub-command.
func (g *Grammar) HelpFor(name string) string {
	command, ok := g.index[strings.ToLower(name)]
	if !ok {
		return g.Help()
	}

	var b strings.Builder
	b.WriteString("Usage: match ")
	b.WriteString(command.Name)
	for _, operand := range command.Operands {
		if operand.Required {
			fmt.Fprintf(&b, " <%s>", operand.Name)
		} else {
			fmt.Fprintf(&b, " [<%s>]", operand.Name)
		}
	}
	if len(command.Options) > 0 {
		b.WriteString(" [options]")
	}
	fmt.Fprintf(&b, "\n\n%s\n", command.Description)

	if len(command.Operands) > 0 {
		b.WriteString("\nOperands:\n")
		for _, operand := range command.Operands {
			description := operand.Description
			if !operand.Required && operand.Default != "" {
				description = fmt.Sprintf("%s (default %q)", description, operand.Default)
			}
			fmt.Fprintf(&b, "  %-10s %s\n", operand.Name, description)
		}
	}
	if len(command.Options) > 0 {
		b.WriteString("\nOptions:\n")
		for _, option := range command.Options {
			label := "--" + option.Name
			if option.Short != "" {
				label = fmt.Sprintf("-%s, %s", option.Short, label)
			}
			if option.Kind != OptionFlag {
				label += " <value>"
			}
			fmt.Fprintf(&b, "  %-24s %s\n", label, option.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
