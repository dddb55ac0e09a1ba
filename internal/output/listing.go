package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ndstoolkit/ndsrom/pkg/nds"
)

// PrintListing prints the entries of one directory as a table.
func PrintListing(entries []nds.Entry, w io.Writer, terminalWidth int) {
	if terminalWidth <= 0 {
		text.DisableColors()
	}

	t := newTable(w, terminalWidth)
	t.AppendHeader(table.Row{"Name", "Kind", "Size", "File ID"})
	for _, e := range entries {
		kind, size, id := "file", any(e.Range.Size()), any(e.FileID)
		if e.Dir {
			kind, size = "dir", "-"
		}
		if e.FileID < 0 {
			id = "-"
		}
		t.AppendRow(table.Row{e.Name, kind, size, id})
	}
	t.Render()
}

// PrintTree prints the directory at dir and everything below it, one entry
// per line. Directories are styled when w is a terminal.
func PrintTree(rom *nds.ROM, dir string, w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	dirStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sizeStyle := r.NewStyle().Faint(true)

	root, err := rom.VFS().Stat(dir)
	if err != nil {
		return err
	}

	var build func(e nds.Entry) (*tree.Tree, error)
	build = func(e nds.Entry) (*tree.Tree, error) {
		label := e.Name + "/"
		if e.Path == "/" {
			label = "/"
		}
		t := tree.Root(dirStyle.Render(label))

		children, err := rom.ReadDir(e.Path)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if !c.Dir {
				t.Child(c.Name + " " + sizeStyle.Render(fmt.Sprintf("(%d bytes)", c.Range.Size())))
				continue
			}

			sub, err := build(c)
			if err != nil {
				return nil, err
			}
			t.Child(sub)
		}

		return t, nil
	}

	t, err := build(root)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, t.String())

	return err
}
