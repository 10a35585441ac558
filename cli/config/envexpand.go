// Package config handles flightlog.yaml loading for flightlog analyze.
package config

import (
	"fmt"
	"os"
	"regexp"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// ExpandEnv substitutes environment variables in input.
//
//	${VAR}           value, or empty when unset
//	${VAR:-default}  value, or default when unset or empty
//	${VAR:?message}  value, or an error carrying message when unset or empty
func ExpandEnv(input string) (string, error) {
	var firstErr error
	out := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		if value := os.Getenv(name); value != "" {
			return value
		}
		switch op {
		case "-":
			return arg
		case "?":
			if firstErr == nil {
				if arg == "" {
					arg = "required"
				}
				firstErr = fmt.Errorf("environment variable %s: %s", name, arg)
			}
		}
		return ""
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
