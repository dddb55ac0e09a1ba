package testcmd

import "github.com/ndstoolkit/ndsrom/internal/testutility"

type Case struct {
	Name string
	Args []string
	Exit int

	// Replacements are applied to both stdout and stderr before matching,
	// typically mapping a temporary directory to a placeholder
	Replacements map[string]string

	// ReplaceRules are only used for JSON output
	ReplaceRules []testutility.JSONReplaceRule
}

func (c Case) isOutputtingJSON() bool {
	for i, arg := range c.Args {
		if arg == "--format=json" {
			return true
		}

		if arg == "--format" && i+1 < len(c.Args) && c.Args[i+1] == "json" {
			return true
		}
	}

	return false
}
