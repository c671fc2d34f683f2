package worker

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"painelloja/internal/app/admin/repository"
	"painelloja/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CleanupWorker periodically sweeps the uploads directory and removes
// image files no product references anymore. Orphans appear when a
// product row is deleted or its image replaced and the best-effort
// file removal failed.
type CleanupWorker struct {
	cron        *cron.Cron
	productRepo repository.ProductRepository
	uploadsDir  string
}

func NewCleanupWorker(productRepo repository.ProductRepository, uploadsDir string) *CleanupWorker {
	return &CleanupWorker{
		cron:        cron.New(),
		productRepo: productRepo,
		uploadsDir:  uploadsDir,
	}
}

// Start registers the sweep on the given cron schedule and runs one
// sweep immediately.
func (w *CleanupWorker) Start(ctx context.Context, schedule string) error {
	_, err := w.cron.AddFunc(schedule, func() {
		if err := w.Sweep(ctx); err != nil {
			logger.Error().Err(err).Str("dir", w.uploadsDir).Msg("Upload cleanup sweep failed")
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	logger.Info().Str("schedule", schedule).Str("dir", w.uploadsDir).Msg("Upload cleanup scheduler started")

	if err := w.Sweep(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial upload cleanup sweep failed")
	}

	return nil
}

func (w *CleanupWorker) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	logger.Info().Msg("Upload cleanup scheduler stopped")
}

// Sweep deletes every file in the uploads directory that no product
// row references.
func (w *CleanupWorker) Sweep(ctx context.Context) error {
	paths, err := w.productRepo.GetImagePaths(ctx)
	if err != nil {
		return err
	}

	referenced := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		referenced[filepath.Base(strings.TrimPrefix(p, "/uploads/"))] = struct{}{}
	}

	entries, err := os.ReadDir(w.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := referenced[entry.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(w.uploadsDir, entry.Name())); err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to remove orphaned upload")
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info().Int("count", removed).Msg("Removed orphaned uploads")
	}

	return nil
}
