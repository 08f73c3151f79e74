// Package flagx lets several flag sets share one command line. Each consumer
// picks out only the flags it owns, so the JSON config path and the server
// flags can be parsed independently without "flag provided but not defined".
package flagx

import (
	"flag"
	"io"
	"slices"
	"strings"
)

// FilterArgs returns the arguments from args that belong to one of the named
// flags, in their original order. Both "-f value" and "-f=value" forms are
// recognized. A following argument is taken as the value unless it starts
// with "-".
func FilterArgs(args []string, names ...string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, ok := strings.Cut(arg, "="); ok {
			if slices.Contains(names, name) {
				out = append(out, arg)
			}
			continue
		}

		if !slices.Contains(names, arg) {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// ConfigPath extracts the JSON config file path given by -c or -config.
// The last occurrence wins. It returns "" when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, "-c", "-config", "--config"))

	return path
}
