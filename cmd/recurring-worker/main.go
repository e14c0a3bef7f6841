package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bookkeeper/internal/config"
	"bookkeeper/internal/database"
	"bookkeeper/internal/logger"
	"bookkeeper/internal/recurrence"
	"bookkeeper/internal/services"
)

type groupLister interface {
	ListGroupIDs() ([]string, error)
}

type backfiller interface {
	CreateMissing(ctx context.Context, groupID string, target time.Time) (int, error)
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	groups := services.NewGroupService(dbManager.DB())
	recurring := services.NewRecurringService(dbManager.DB())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("recurring worker started",
		"interval", appConfig.RecurringInterval,
		"concurrency", appConfig.WorkerConcurrency)

	ticker := time.NewTicker(appConfig.RecurringInterval)
	defer ticker.Stop()

	now := time.Now()
	for {
		created, err := backfillAll(ctx, groups, recurring, tomorrow(now), appConfig.WorkerConcurrency)
		if err != nil {
			log.Errorw("backfill run failed", "error", err)
		} else {
			log.Infow("backfill run complete", "occurrences_created", created)
		}

		select {
		case <-ctx.Done():
			log.Info("recurring worker stopped")
			return nil
		case now = <-ticker.C:
		}
	}
}

func tomorrow(now time.Time) time.Time {
	return recurrence.Day(now).AddDate(0, 0, 1)
}

// backfillAll creates the missing occurrences of every group, at most limit
// groups at a time. A failing group does not stop the others; their errors
// are joined once all groups were tried.
func backfillAll(ctx context.Context, groups groupLister, recurring backfiller, target time.Time, limit int) (int, error) {
	ids, err := groups.ListGroupIDs()
	if err != nil {
		return 0, err
	}

	var (
		mu    sync.Mutex
		total int
		errs  []error
	)
	var g errgroup.Group
	g.SetLimit(limit)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			n, err := recurring.CreateMissing(ctx, id, target)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Get().Warnw("backfill failed", "group_id", id, "error", err)
				errs = append(errs, fmt.Errorf("group %s: %w", id, err))
				return nil
			}
			total += n
			return nil
		})
	}
	_ = g.Wait()
	return total, errors.Join(errs...)
}
