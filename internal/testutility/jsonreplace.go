package testutility

import (
	"path"
	"testing"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// JSONReplaceRule replaces the value at Path, a gjson path, with the result
// of ReplaceFunc.
type JSONReplaceRule struct {
	Path        string
	ReplaceFunc func(toReplace gjson.Result) any
}

// OnlyBaseNameRule keeps the last element of the "file" path printed by
// commands, dropping the temporary directory tests run in.
var OnlyBaseNameRule = JSONReplaceRule{
	Path: "file",
	ReplaceFunc: func(toReplace gjson.Result) any {
		return path.Base(toReplace.String())
	},
}

// NormalizeJSON applies rules to input and pretty prints the result.
func NormalizeJSON(t *testing.T, input string, rules ...JSONReplaceRule) string {
	t.Helper()

	if !gjson.Valid(input) {
		t.Fatalf("output is not valid JSON:\n%s", input)
	}

	out := input
	for _, rule := range rules {
		res := gjson.Get(input, rule.Path)
		if !res.Exists() {
			continue
		}

		var err error
		out, err = sjson.SetOptions(out, rule.Path, rule.ReplaceFunc(res), &sjson.Options{Optimistic: true})
		if err != nil {
			t.Fatalf("failed to replace %s: %v", rule.Path, err)
		}
	}

	return string(pretty.Pretty([]byte(out)))
}
