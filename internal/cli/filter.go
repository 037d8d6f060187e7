package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/autopeer-io/ft/internal/core"
)

// FilterArgs keeps only the options named in novalopts (no value) and
// valopts (exactly one value) from args, in order. This lets the mode
// and the config files be known before the full option set exists.
//
// Value options are kept as "opt value" pairs, as "--opt=value", or, for
// two character options, glued as "-cFILE". Everything else is dropped,
// and filtering stops at "--". A value option that is the last token, or
// whose value starts with "-", is an error.
func FilterArgs(novalopts, valopts, args []string) ([]string, error) {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return out, nil

		case strings.Contains(a, "="):
			opt, _, _ := strings.Cut(a, "=")
			if slices.Contains(valopts, opt) {
				out = append(out, a)
			}

		case slices.Contains(novalopts, a):
			out = append(out, a)

		case slices.Contains(valopts, a):
			if i+1 >= len(args) {
				return nil, &core.OptionsError{Err: fmt.Errorf("option %s requires a value", a)}
			}
			next := args[i+1]
			if strings.HasPrefix(next, "-") {
				return nil, &core.OptionsError{Err: fmt.Errorf("option %s requires a value, got option %q", a, next)}
			}
			out = append(out, a, next)
			i++

		default:
			for _, opt := range valopts {
				if len(opt) == 2 && strings.HasPrefix(a, opt) && len(a) > 2 {
					out = append(out, a)
					break
				}
			}
		}
	}
	return out, nil
}
