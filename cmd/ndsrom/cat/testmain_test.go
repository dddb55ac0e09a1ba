package cat_test

import (
	"log/slog"
	"testing"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/cat"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/cmd"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/testcmd"
	"github.com/ndstoolkit/ndsrom/internal/config"
	"github.com/ndstoolkit/ndsrom/internal/testlogger"
	"github.com/ndstoolkit/ndsrom/internal/testutility"
)

func TestMain(m *testing.M) {
	config.ConfigName = "ndsrom-test.toml"

	slog.SetDefault(slog.New(testlogger.New()))
	testcmd.CommandsUnderTest = []cmd.CommandBuilder{cat.Command}
	m.Run()

	testutility.CleanSnapshots(m)
}
