// Package export publishes a leader run Result to the parent build.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/target/matrix-leader/internal/adapters/redis"
	"github.com/target/matrix-leader/internal/domain/matrix"
	"github.com/target/matrix-leader/internal/ports"
)

var (
	_ ports.ResultExporter = (*FileExporter)(nil)
	_ ports.ResultExporter = (*ReportExporter)(nil)
	_ ports.ResultExporter = (*RedisExporter)(nil)
	_ ports.ResultExporter = (*Fanout)(nil)
)

// FileExporter writes the result as "export KEY=VALUE" lines that a parent
// shell can source.
type FileExporter struct {
	Path string
}

// NewFileExporter returns an exporter writing to path.
func NewFileExporter(path string) *FileExporter {
	return &FileExporter{Path: path}
}

func (e *FileExporter) Export(_ context.Context, res matrix.Result) error {
	content, err := Render(res.Vars())
	if err != nil {
		return err
	}

	if dir := filepath.Dir(e.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(e.Path, []byte(content), 0o644); err != nil { // #nosec G306 - sourced by the build shell
		return fmt.Errorf("write export file %s: %w", e.Path, err)
	}
	return nil
}

// Render formats vars as sorted, shell-quoted "export" statements.
func Render(vars map[string]string) (string, error) {
	body, err := godotenv.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("marshal export vars: %w", err)
	}
	if body == "" {
		return "", nil
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = "export " + line
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// ReportExporter prints the final "Report: KEY=VALUE;..." line.
type ReportExporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewReportExporter returns an exporter writing to w, stdout when nil.
func NewReportExporter(w io.Writer) *ReportExporter {
	if w == nil {
		w = os.Stdout
	}
	return &ReportExporter{w: w}
}

func (e *ReportExporter) Export(_ context.Context, res matrix.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := fmt.Fprintln(e.w, Report(res.Vars()))
	return err
}

// Report renders vars as "Report: K=V;\nK=V" in key order.
func Report(vars map[string]string) string {
	keys := matrix.SortedKeys(vars)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + vars[k]
	}
	return "Report: " + strings.Join(parts, ";\n")
}

// ResultSaver is the subset of redis.ResultStore used by RedisExporter.
type ResultSaver interface {
	Save(ctx context.Context, buildID string, vars map[string]string) error
}

var _ ResultSaver = (*redis.ResultStore)(nil)

// RedisExporter stores the result under the build id so other jobs or
// tooling can read it after the leader exits.
type RedisExporter struct {
	store ResultSaver
}

// NewRedisExporter wraps a result store.
func NewRedisExporter(store ResultSaver) *RedisExporter {
	return &RedisExporter{store: store}
}

func (e *RedisExporter) Export(ctx context.Context, res matrix.Result) error {
	if res.BuildID == "" {
		return errors.New("redis export needs a build id")
	}
	return e.store.Save(ctx, res.BuildID, res.Vars())
}

// Fanout runs every exporter concurrently and joins their failures.
type Fanout struct {
	exporters []namedExporter
	logger    *slog.Logger
}

type namedExporter struct {
	name string
	exp  ports.ResultExporter
}

// NewFanout creates an empty fan-out exporter.
func NewFanout(logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{logger: logger.With("component", "result_export")}
}

// Add registers an exporter under name. Nil exporters are ignored.
func (f *Fanout) Add(name string, exp ports.ResultExporter) *Fanout {
	if exp != nil {
		f.exporters = append(f.exporters, namedExporter{name: name, exp: exp})
	}
	return f
}

// Len returns the number of registered exporters.
func (f *Fanout) Len() int {
	return len(f.exporters)
}

func (f *Fanout) Export(ctx context.Context, res matrix.Result) error {
	errs := make([]error, len(f.exporters))

	var g errgroup.Group
	for i, ne := range f.exporters {
		g.Go(func() error {
			if err := ne.exp.Export(ctx, res); err != nil {
				f.logger.WarnContext(ctx, "result export failed", "exporter", ne.name, "error", err)
				errs[i] = fmt.Errorf("%s: %w", ne.name, err)
				return nil
			}
			f.logger.DebugContext(ctx, "result exported", "exporter", ne.name)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
