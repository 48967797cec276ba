package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName       = "bool"
	toggleFlagImplicitValue  = "true"
	toggleFlagAcceptedValues = "true, false, yes, no, on, off, enable, disable, 1, 0"
	invalidToggleValueFormat = "invalid boolean value %q for --%s; accepted values: %s"
)

var toggleLiterals = map[string]bool{
	"true":    true,
	"t":       true,
	"1":       true,
	"yes":     true,
	"y":       true,
	"on":      true,
	"enable":  true,
	"false":   false,
	"f":       false,
	"0":       false,
	"no":      false,
	"n":       false,
	"off":     false,
	"disable": false,
}

func parseToggleLiteral(input string) (bool, bool) {
	value, known := toggleLiterals[strings.ToLower(strings.TrimSpace(input))]
	return value, known
}

// toggleFlagValue is a pflag.Value for switches that also accept an explicit
// literal, so "--copy", "--copy=no" and "--copy off" all parse.
type toggleFlagValue struct {
	target *bool
	name   string
}

func (value *toggleFlagValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		input = toggleFlagImplicitValue
	}
	parsed, known := parseToggleLiteral(input)
	if !known || value.target == nil {
		return fmt.Errorf(invalidToggleValueFormat, input, value.name, toggleFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.Var(&toggleFlagValue{target: target, name: name}, name, usage)
	flag := flagSet.Lookup(name)
	flag.DefValue = strconv.FormatBool(defaultValue)
	flag.NoOptDefVal = toggleFlagImplicitValue
}

// normalizeBooleanFlagArguments joins "--flag literal" pairs into
// "--flag=literal" for every boolean flag of the command tree, since pflag
// would otherwise treat the literal as a positional argument.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	toggleNames := map[string]struct{}{}
	collectToggleNames(command, toggleNames)

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if strings.HasPrefix(argument, "--") && !strings.Contains(argument, "=") && index+1 < len(arguments) {
			name := strings.TrimPrefix(argument, "--")
			if _, isToggle := toggleNames[name]; isToggle {
				if _, known := parseToggleLiteral(arguments[index+1]); known && !strings.HasPrefix(arguments[index+1], "-") {
					normalized = append(normalized, argument+"="+arguments[index+1])
					index++
					continue
				}
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectToggleNames(command *cobra.Command, target map[string]struct{}) {
	record := func(flag *pflag.Flag) {
		if flag.Value != nil && flag.Value.Type() == toggleFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectToggleNames(child, target)
	}
}
