// Package flagx extracts a handful of flags from os.Args before the command
// tree parses them, so the config file can be loaded first and its values can
// become the flag defaults.
package flagx

import (
	"strings"
)

// ConfigFlags are the spellings accepted for the config file path.
var ConfigFlags = []string{"-c", "--config", "-config"}

// FilterArgs returns only the allowed flags (and their values) from args.
//
// Both "-c conf.yaml" and "--config=conf.yaml" forms are recognised. A flag
// immediately followed by another dash-prefixed token is kept without a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile returns the last config path given in args, or "" when none.
func ConfigFile(args []string) string {
	var path string
	filtered := FilterArgs(args, ConfigFlags)
	for i := 0; i < len(filtered); i++ {
		if _, v, ok := strings.Cut(filtered[i], "="); ok {
			path = v
			continue
		}
		if i+1 < len(filtered) && !strings.HasPrefix(filtered[i+1], "-") {
			path = filtered[i+1]
			i++
		}
	}
	return path
}
