package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
	"github.com/tidwall/pretty"
)

// Info summarises an opened ROM for the info command.
type Info struct {
	File         string      `json:"file"         yaml:"file"`
	Size         int64       `json:"size"         yaml:"size"`
	Header       *nds.Header `json:"header"       yaml:"header"`
	Capacity     uint64      `json:"capacity"     yaml:"capacity"`
	ARM9Footer   bool        `json:"arm9Footer"   yaml:"arm9Footer"`
	Files        int         `json:"files"        yaml:"files"`
	Directories  int         `json:"directories"  yaml:"directories"`
	ARM9Overlays int         `json:"arm9Overlays" yaml:"arm9Overlays"`
	ARM7Overlays int         `json:"arm7Overlays" yaml:"arm7Overlays"`
}

// NewInfo collects the Info of rom, opened from file.
func NewInfo(file string, rom *nds.ROM) (Info, error) {
	arm9, err := rom.ARM9Range()
	if err != nil {
		return Info{}, err
	}

	h := rom.Header()
	tree := rom.Tree()

	return Info{
		File:         file,
		Size:         rom.Source().Size(),
		Header:       h,
		Capacity:     h.CapacityBytes(),
		ARM9Footer:   arm9.Size() > int64(h.ARM9.Size),
		Files:        tree.Files(),
		Directories:  len(tree.Nodes) - tree.Files(),
		ARM9Overlays: len(rom.Overlays(nds.ARM9)),
		ARM7Overlays: len(rom.Overlays(nds.ARM7)),
	}, nil
}

var formats = []string{"table", "json", "yaml"}

// Formats returns the output formats accepted by the info command.
func Formats() []string {
	return slices.Clone(formats)
}

// PrintInfo writes info to w in the given format.
func PrintInfo(info Info, format string, w io.Writer, terminalWidth int) error {
	switch format {
	case "table":
		PrintInfoTable(info, w, terminalWidth)
		return nil
	case "json":
		return PrintInfoJSON(info, w)
	case "yaml":
		return PrintInfoYAML(info, w)
	}

	return fmt.Errorf("unsupported output format \"%s\" - must be one of: %s", format, strings.Join(formats, ", "))
}

// PrintInfoTable prints info as a two column table.
func PrintInfoTable(info Info, w io.Writer, terminalWidth int) {
	if terminalWidth <= 0 {
		text.DisableColors()
	}

	h := info.Header
	segment := func(s nds.Segment) string {
		return fmt.Sprintf("0x%08X (%d bytes, RAM 0x%08X, entry 0x%08X)", s.ROMOffset, s.Size, s.RAMAddress, s.EntryAddress)
	}
	region := func(t nds.Table) string {
		return fmt.Sprintf("0x%08X (%d bytes)", t.Offset, t.Size)
	}

	icon := "none"
	if h.HasIconTitle() {
		icon = fmt.Sprintf("0x%08X (%d bytes)", h.IconTitleOffset, nds.IconTitleSize)
	}
	arm9 := segment(h.ARM9)
	if info.ARM9Footer {
		arm9 += ", with footer"
	}

	t := newTable(w, terminalWidth)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Title", h.GameTitle},
		{"Game code", h.GameCode},
		{"Maker code", h.MakerCode},
		{"Unit code", fmt.Sprintf("0x%02X", h.UnitCode)},
		{"Capacity", fmt.Sprintf("%d KiB", info.Capacity/1024)},
		{"Version", h.ROMVersion},
		{"Image size", fmt.Sprintf("%d bytes", info.Size)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"ARM9", arm9},
		{"ARM7", segment(h.ARM7)},
		{"FNT", region(h.FNT)},
		{"FAT", region(h.FAT)},
		{"ARM9 overlays", region(h.ARM9Overlays)},
		{"ARM7 overlays", region(h.ARM7Overlays)},
		{"Icon/title", icon},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Files", info.Files},
		{"Directories", info.Directories},
		{"Overlays", fmt.Sprintf("%d ARM9, %d ARM7", info.ARM9Overlays, info.ARM7Overlays)},
	})
	t.Render()
}

// PrintInfoJSON writes info as indented JSON.
func PrintInfoJSON(info Info, w io.Writer) error {
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal info: %w", err)
	}

	_, err = w.Write(pretty.Pretty(b))

	return err
}

// PrintInfoYAML writes info as a YAML document.
func PrintInfoYAML(info Info, w io.Writer) error {
	b, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal info: %w", err)
	}

	_, err = w.Write(b)

	return err
}

func newTable(w io.Writer, terminalWidth int) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	// use fancy characters if we're outputting to a terminal
	if terminalWidth > 0 {
		t.SetStyle(table.StyleRounded)
		t.SetAllowedRowLength(terminalWidth)
	}

	return t
}
