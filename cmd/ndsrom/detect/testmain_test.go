package detect_test

import (
	"log/slog"
	"testing"

	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/detect"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/extract"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/cmd"
	"github.com/ndstoolkit/ndsrom/cmd/ndsrom/internal/testcmd"
	"github.com/ndstoolkit/ndsrom/internal/config"
	"github.com/ndstoolkit/ndsrom/internal/testlogger"
	"github.com/ndstoolkit/ndsrom/internal/testutility"
)

func TestMain(m *testing.M) {
	config.ConfigName = "ndsrom-test.toml"

	slog.SetDefault(slog.New(testlogger.New()))
	testcmd.CommandsUnderTest = []cmd.CommandBuilder{detect.Command, extract.Command}
	m.Run()

	testutility.CleanSnapshots(m)
}
