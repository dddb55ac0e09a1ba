package cmd

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v3"
)

func Test_insertDefaultCommand(t *testing.T) {
	t.Parallel()

	commands := []*cli.Command{
		{Name: "default"},
		{Name: "helpers.go"},
		{Name: "extract", Aliases: []string{"x"}},
	}
	defaultCommand := "default"

	tests := []struct {
		name         string
		originalArgs []string
		wantArgs     []string
		wantWarning  bool
	}{
		{
			name:         "default command is specified",
			originalArgs: []string{"ndsrom", "default", "game.nds"},
			wantArgs:     []string{"ndsrom", "default", "game.nds"},
		},
		{
			name:         "command is not specified",
			originalArgs: []string{"ndsrom", "game.nds"},
			wantArgs:     []string{"ndsrom", "default", "game.nds"},
		},
		{
			name:         "command is an alias",
			originalArgs: []string{"ndsrom", "x", "game.nds", "out"},
			wantArgs:     []string{"ndsrom", "x", "game.nds", "out"},
		},
		{
			name:         "command is also a filename",
			originalArgs: []string{"ndsrom", "helpers.go"},
			wantArgs:     []string{"ndsrom", "helpers.go"},
			wantWarning:  true,
		},
		{
			name:         "option without a command",
			originalArgs: []string{"ndsrom", "--format", "json", "game.nds"},
			wantArgs:     []string{"ndsrom", "default", "--format", "json", "game.nds"},
		},
		{
			name:         "command is a built-in option",
			originalArgs: []string{"ndsrom", "--version"},
			wantArgs:     []string{"ndsrom", "--version"},
		},
		{
			name:         "help",
			originalArgs: []string{"ndsrom", "help"},
			wantArgs:     []string{"ndsrom", "help"},
		},
		{
			name:         "no arguments",
			originalArgs: []string{"ndsrom"},
			wantArgs:     []string{"ndsrom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stderr := &bytes.Buffer{}
			original := append([]string(nil), tt.originalArgs...)

			got := insertDefaultCommand(tt.originalArgs, commands, defaultCommand, stderr)
			if diff := cmp.Diff(tt.wantArgs, got); diff != "" {
				t.Errorf("insertDefaultCommand() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(original, tt.originalArgs); diff != "" {
				t.Errorf("insertDefaultCommand() modified its input (-want +got):\n%s", diff)
			}
			if gotWarning := stderr.Len() > 0; gotWarning != tt.wantWarning {
				t.Errorf("warning printed = %v, want %v: %q", gotWarning, tt.wantWarning, stderr.String())
			}
		})
	}
}
