package nds

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"runtime"
	"sync"

	"github.com/ndstoolkit/ndsrom/internal/cmdlogger"
	"github.com/ndstoolkit/ndsrom/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// Names of the files making up the extracted layout.
const (
	HeaderFile = "header.bin"
	ARM9File   = "arm9.bin"
	ARM7File   = "arm7.bin"
	BannerFile = "banner.bin"
)

type extractOptions struct {
	jobs       int
	sequential bool
	progress   *Progress
}

// ExtractOption configures ROM.Extract.
type ExtractOption func(*extractOptions)

// WithJobs limits the number of files written at the same time. Values
// below 1 mean runtime.NumCPU().
func WithJobs(n int) ExtractOption {
	return func(o *extractOptions) {
		o.jobs = n
	}
}

// WithSequential writes one file at a time even when the source and the
// target support concurrent access.
func WithSequential() ExtractOption {
	return func(o *extractOptions) {
		o.sequential = true
	}
}

// WithProgress reports the extraction's progress to p.
func WithProgress(p *Progress) ExtractOption {
	return func(o *extractOptions) {
		o.progress = p
	}
}

// Extract writes the contents of the ROM into target using the layout
// expected by ndstool:
//
//	header.bin arm9.bin arm7.bin y9.bin y7.bin [banner.bin]
//	overlay/overlay_NNNN.bin overlay7/overlay_NNNN.bin data/...
//
// Files are independent units. A failing unit does not stop the others;
// every failure is returned, joined, once all queued units have finished.
// When ctx is cancelled no further units are started, units already
// writing run to completion and ctx.Err() is included in the result.
//
// Units run in parallel only if both the ROM's source and target support
// concurrent access. That is decided once per call.
func (r *ROM) Extract(ctx context.Context, target storage.Target, opts ...ExtractOption) error {
	if r.closed.Load() {
		return ErrClosed
	}

	o := extractOptions{progress: NewProgress()}
	for _, opt := range opts {
		opt(&o)
	}

	limit := 1
	if !o.sequential && r.src.SupportsConcurrentAccess() && target.SupportsConcurrentAccess() {
		limit = o.jobs
		if limit < 1 {
			limit = runtime.NumCPU()
		}
	}
	cmdlogger.Debugf("Extracting with %d worker(s)", limit)

	e := &extractor{
		ctx:      ctx,
		rom:      r,
		target:   target,
		progress: o.progress,
	}
	e.g.SetLimit(limit)
	e.progress.reset(r.fat.Used())

	e.run()

	// units record their own failures through fail
	_ = e.g.Wait()

	if err := ctx.Err(); err != nil {
		e.errs = append(e.errs, err)
	}

	return errors.Join(e.errs...)
}

type extractor struct {
	ctx      context.Context
	rom      *ROM
	target   storage.Target
	progress *Progress
	g        errgroup.Group

	mu   sync.Mutex
	errs []error
}

func (e *extractor) fail(name string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmdlogger.Debugf("Failed to extract %s: %v", name, err)
	e.errs = append(e.errs, &ExtractError{Path: name, Err: err})
}

// mkdir runs on the scheduling goroutine, so a directory always exists
// before any unit writing into it is queued.
func (e *extractor) mkdir(dir string) bool {
	if err := e.target.MkdirAll(dir); err != nil {
		e.fail(dir, err)
		return false
	}

	return true
}

// queue schedules the write of one file. It returns false once the context
// is done, telling the caller to stop queueing.
func (e *extractor) queue(name string, counts bool, locate func() (Range, error)) bool {
	if e.ctx.Err() != nil {
		return false
	}

	e.g.Go(func() error {
		// queued before cancellation but not started yet
		if e.ctx.Err() != nil {
			return nil
		}

		rg, err := locate()
		if err != nil {
			e.fail(name, err)
			return nil
		}

		sr, err := e.rom.SectionReader(rg)
		if err != nil {
			e.fail(name, err)
			return nil
		}

		if err := e.target.WriteFile(name, sr); err != nil {
			e.fail(name, err)
			return nil
		}

		cmdlogger.Debugf("Extracted %s (%d bytes)", name, rg.Size())
		if counts {
			e.progress.increment()
		}

		return nil
	})

	return true
}

func (e *extractor) run() {
	r := e.rom

	if !e.mkdir("") {
		return
	}

	fixed := func(rg Range) func() (Range, error) {
		return func() (Range, error) { return rg, nil }
	}

	units := []struct {
		name   string
		locate func() (Range, error)
	}{
		{HeaderFile, fixed(r.HeaderRange())},
		{ARM9File, r.ARM9Range},
		{ARM7File, fixed(r.ARM7Range())},
		{ARM9.OverlayTableFile(), fixed(r.OverlayTableRange(ARM9))},
		{ARM7.OverlayTableFile(), fixed(r.OverlayTableRange(ARM7))},
	}
	if icon, ok := r.IconRange(); ok {
		units = append(units, struct {
			name   string
			locate func() (Range, error)
		}{BannerFile, fixed(icon)})
	}

	for _, u := range units {
		if !e.queue(u.name, false, u.locate) {
			return
		}
	}

	for _, p := range []Processor{ARM9, ARM7} {
		table := r.Overlays(p)
		if len(table) == 0 {
			continue
		}
		if !e.mkdir(p.OverlayDir()) {
			continue
		}

		for i, ov := range table {
			name := path.Join(p.OverlayDir(), ov.FileName())
			if !e.queue(name, true, func() (Range, error) { return r.OverlayRange(p, i) }) {
				return
			}
		}
	}

	tree := r.Tree()
	_ = tree.Walk(tree.Root(), func(i int, n *Node) error {
		name := tree.Path(i)
		if n.IsDir() {
			if !e.mkdir(name) {
				return fs.SkipDir
			}

			return nil
		}

		if !e.queue(name, true, func() (Range, error) { return r.FileRange(i) }) {
			return context.Canceled
		}

		return nil
	})
}
