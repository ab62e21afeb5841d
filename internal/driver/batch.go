package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"rsfront/internal/diag"
	"rsfront/internal/project"
	"rsfront/internal/source"
)

// EventStatus is the state of one file in a directory check.
type EventStatus uint8

const (
	StatusQueued EventStatus = iota
	StatusWorking
	StatusDone
	StatusError
	StatusCached
)

func (s EventStatus) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	case StatusCached:
		return "cached"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Event reports progress of CheckDir. Stage is the phase name while the
// file is in StatusWorking and empty otherwise.
type Event struct {
	File   string
	Stage  string
	Status EventStatus
}

// FileResult is the outcome of checking one file of a directory.
type FileResult struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Funcs   int
	Cached  bool
	Result  *Result // nil for cache hits and load failures
}

// Failed reports whether the file has errors.
func (r FileResult) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// DirOptions extends Options for CheckDir.
type DirOptions struct {
	Options
	Jobs  int
	Cache *DiskCache
	// Events may be called from several goroutines at once.
	Events func(Event)
}

// listRSFiles возвращает отсортированный список всех *.rs файлов в директории
func listRSFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".rs") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ListFiles exposes the file discovery of CheckDir so callers can size
// their progress output up front.
func ListFiles(dir string) ([]string, error) {
	return listRSFiles(dir)
}

// CheckDir checks every *.rs file under dir in parallel. Each file is an
// independent crate with its own file set. Results follow path order.
func CheckDir(ctx context.Context, dir string, opts DirOptions) ([]FileResult, error) {
	files, err := listRSFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	emit := opts.Events
	if emit == nil {
		emit = func(Event) {}
	}
	for _, path := range files {
		emit(Event{File: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := checkOne(gctx, path, opts, emit)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkOne(ctx context.Context, path string, opts DirOptions, emit func(Event)) (FileResult, error) {
	fset := source.NewFileSet()
	fileID, err := fset.Load(path)
	if err != nil {
		bag := diag.NewBag(opts.MaxDiagnostics)
		bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
		emit(Event{File: path, Status: StatusError})
		return FileResult{Path: path, FileSet: fset, Bag: bag}, nil
	}
	file := fset.Get(fileID)

	key := cacheKey(file.Hash, opts.Options)
	var payload CheckPayload
	if hit, cacheErr := opts.Cache.Get(key, &payload); cacheErr == nil && hit && payload.ContentHash == project.Digest(file.Hash) {
		bag := payload.restore(fileID, opts.MaxDiagnostics)
		bag.Sort()
		status := StatusCached
		if payload.Broken {
			status = StatusError
		}
		emit(Event{File: path, Status: status})
		return FileResult{Path: path, FileSet: fset, File: file, Bag: bag, Funcs: payload.Funcs, Cached: true}, nil
	}

	copts := opts.Options
	user := copts.Observer
	copts.Observer = func(ev PhaseEvent) {
		if ev.Status == PhaseStart {
			emit(Event{File: path, Stage: ev.Name, Status: StatusWorking})
		}
		if user != nil {
			user(ev)
		}
	}
	res, err := compileFile(ctx, fset, fileID, copts)
	if err != nil {
		return FileResult{}, fmt.Errorf("%s: %w", path, err)
	}
	// ошибки записи в кэш не влияют на результат проверки
	_ = opts.Cache.Put(key, payloadFromResult(res))

	out := FileResult{Path: path, FileSet: fset, File: file, Bag: res.Bag, Result: res}
	if m := res.Module(); m != nil {
		out.Funcs = len(m.Funcs)
	}
	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emit(Event{File: path, Status: status})
	return out, nil
}
