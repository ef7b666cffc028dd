// Package analysis orchestrates the scan pipeline and answers queries over
// the resulting snapshot. A scan walks the tree, extracts and classifies
// every file, resolves the dependency graph, aggregates modules, and stamps
// the whole result into one immutable snapshot.
package analysis

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeatlas/internal/classify"
	"codeatlas/internal/config"
	"codeatlas/internal/errors"
	"codeatlas/internal/extract"
	"codeatlas/internal/logging"
	"codeatlas/internal/model"
	"codeatlas/internal/modules"
	"codeatlas/internal/resolve"
	"codeatlas/internal/walker"
)

// Scanner runs the analysis pipeline over a source tree.
type Scanner struct {
	cfg    *config.Config
	logger *logging.Logger

	walker     *walker.Walker
	extractor  *extract.Extractor
	resolver   *resolve.Resolver
	aggregator *modules.Aggregator
}

// NewScanner wires the pipeline stages from one configuration.
func NewScanner(cfg *config.Config, logger *logging.Logger) *Scanner {
	return &Scanner{
		cfg:        cfg,
		logger:     logger.Named("scanner"),
		walker:     walker.New(&cfg.Scan, logger),
		extractor:  extract.New(&cfg.Scan, logger),
		resolver:   resolve.New(&cfg.Resolve, logger),
		aggregator: modules.New(&cfg.Modules, logger),
	}
}

// Scan analyzes the tree at root (optionally restricted to subdir) and
// returns a complete snapshot. The context bounds the whole scan; on
// cancellation the partial work is discarded.
func (s *Scanner) Scan(ctx context.Context, root, subdir string) (*model.Snapshot, error) {
	started := time.Now()

	walked, err := s.walker.Walk(root, subdir)
	if err != nil {
		return nil, err
	}

	files, skipped, err := s.extractAll(ctx, walked)
	if err != nil {
		return nil, err
	}

	for i := range files {
		files[i].Type = classify.Classify(files[i].Path, files[i].Exports)
	}

	resolved := s.resolver.Resolve(files)

	if err := ctx.Err(); err != nil {
		return nil, scanContextError(err)
	}

	snap := &model.Snapshot{
		ID:              uuid.NewString(),
		ScannedAt:       time.Now().UTC(),
		Root:            walked.Root,
		Files:           files,
		DependencyEdges: resolved.Edges,
		Modules:         s.aggregator.Aggregate(files),
	}
	snap.ApiRoutes = deriveRoutes(files)
	snap.Pages = derivePages(files)
	snap.ExternalServices = deriveServices(files)
	snap.Stats = computeStats(snap, walked.Skipped+skipped, resolved.Unresolved)

	s.logger.Info("scan completed", logging.Fields{
		"root":     walked.Root,
		"files":    len(files),
		"edges":    len(resolved.Edges),
		"modules":  len(snap.Modules),
		"duration": time.Since(started).String(),
	})

	return snap, nil
}

// extractAll reads and extracts every walked file with bounded parallelism.
// Unreadable files degrade to a line-count-less record and a skip count;
// they never abort the scan.
func (s *Scanner) extractAll(ctx context.Context, walked *walker.Result) ([]model.FileRecord, int, error) {
	records := make([]*model.FileRecord, len(walked.Files))
	skips := make([]int, len(walked.Files))

	workers := s.cfg.Scan.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				records[idx], skips[idx] = s.extractOne(walked.Root, walked.Files[idx])
			}
		}()
	}

	canceled := false
feed:
	for idx := range walked.Files {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			canceled = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if canceled {
		return nil, 0, scanContextError(ctx.Err())
	}

	files := make([]model.FileRecord, 0, len(records))
	skipped := 0
	for i, rec := range records {
		skipped += skips[i]
		if rec != nil {
			files = append(files, *rec)
		}
	}
	return files, skipped, nil
}

// extractOne reads and extracts a single file. Read failures produce a
// partial record plus a skip count rather than an error.
func (s *Scanner) extractOne(root, rel string) (*model.FileRecord, int) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	content, err := os.ReadFile(full)
	if err != nil {
		ae := errors.Wrap(errors.FileUnreadable, "file could not be read", err)
		s.logger.Warn(ae.Message, logging.Fields{"file": rel, "error": err.Error()})
		return &model.FileRecord{
			Path:    rel,
			Name:    filepath.Base(rel),
			Exports: []model.ExportSymbol{},
			Imports: []model.ImportSpec{},
		}, 1
	}
	return s.extractor.ExtractFile(rel, content), 0
}

func scanContextError(err error) error {
	if err == context.DeadlineExceeded {
		return errors.Wrap(errors.ScanTimeout, "scan exceeded its deadline", err)
	}
	return errors.Wrap(errors.InternalError, "scan canceled", err)
}

func computeStats(snap *model.Snapshot, filesSkipped, unresolved int) model.Stats {
	stats := model.Stats{
		TotalFiles:            len(snap.Files),
		TotalAPIRoutes:        len(snap.ApiRoutes),
		TotalPages:            len(snap.Pages),
		TotalExternalServices: len(snap.ExternalServices),
		FileTypes:             make(map[model.FileType]int),
		FilesSkipped:          filesSkipped,
		UnresolvedImports:     unresolved,
	}

	for _, f := range snap.Files {
		stats.TotalLines += f.Lines
		stats.FileTypes[f.Type]++
		for _, e := range f.Exports {
			switch e.Kind {
			case model.ExportFunction, model.ExportHook:
				stats.TotalFunctions++
			case model.ExportComponent:
				stats.TotalComponents++
			}
		}
	}

	return stats
}
