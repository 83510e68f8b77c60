// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package progress records chapter visits and reads them back for resuming.

Each visit is stamped when the reader enters the chapter, not when the write
reaches the server. The server keeps the row with the newest visited_at, so
two quick navigations whose requests arrive out of order still leave the
later chapter recorded.
*/
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/genra-app/genra/internal/client/gateway"
)

// DefaultTimeout bounds each background write.
const DefaultTimeout = 10 * time.Second

// API is the subset of the gateway used by [Recorder].
type API interface {
	SaveProgress(ctx context.Context, bookID, chapterID string, visitedAt time.Time) (*gateway.SaveResult, error)
	RecordView(ctx context.Context, bookID string) (int64, error)
	Progress(ctx context.Context, bookID string) (*gateway.Progress, error)
	RecentProgress(ctx context.Context, limit int) ([]gateway.Progress, error)
}

// Options configures a [Recorder].
type Options struct {
	Logger  *slog.Logger
	OnError func(error)
	Now     func() time.Time
	Timeout time.Duration
}

// Recorder writes progress in the background.
type Recorder struct {
	api     API
	logger  *slog.Logger
	onError func(error)
	now     func() time.Time
	timeout time.Duration

	inflight sync.WaitGroup
}

// NewRecorder creates a recorder over api.
func NewRecorder(api API, options Options) *Recorder {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	return &Recorder{
		api:     api,
		logger:  options.Logger,
		onError: options.OnError,
		now:     options.Now,
		timeout: options.Timeout,
	}
}

/*
Visit records that the reader entered chapterID of bookID.

Description: The timestamp is taken now; the progress upsert and the view
increment then run on their own goroutine and never block the caller. The
writes outlive ctx cancellation but keep its values.
*/
func (recorder *Recorder) Visit(ctx context.Context, bookID, chapterID string) {
	visitedAt := recorder.now().UTC()
	background := context.WithoutCancel(ctx)

	recorder.inflight.Add(1)
	go func() {
		defer recorder.inflight.Done()

		writeCtx, cancel := context.WithTimeout(background, recorder.timeout)
		defer cancel()

		result, err := recorder.api.SaveProgress(writeCtx, bookID, chapterID, visitedAt)
		if err != nil {
			recorder.fail(writeCtx, "progress_save_failed", bookID, fmt.Errorf("progress_save_failed: %w", err))
		} else if !result.Applied {
			recorder.logger.DebugContext(writeCtx, "progress_superseded",
				slog.String("book_id", bookID),
				slog.String("chapter_id", chapterID),
			)
		}

		if _, err := recorder.api.RecordView(writeCtx, bookID); err != nil {
			recorder.fail(writeCtx, "view_record_failed", bookID, fmt.Errorf("view_record_failed: %w", err))
		}
	}()
}

// Wait blocks until every background write has finished.
func (recorder *Recorder) Wait() {
	recorder.inflight.Wait()
}

// Resume returns the stored position for bookID, or nil when the book was never opened.
func (recorder *Recorder) Resume(ctx context.Context, bookID string) (*gateway.Progress, error) {
	progress, err := recorder.api.Progress(ctx, bookID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return progress, nil
}

// ContinueReading returns the most recently read books, newest first.
func (recorder *Recorder) ContinueReading(ctx context.Context, limit int) ([]gateway.Progress, error) {
	rows, err := recorder.api.RecentProgress(ctx, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []gateway.Progress{}
	}
	return rows, nil
}

func (recorder *Recorder) fail(ctx context.Context, event, bookID string, err error) {
	recorder.logger.WarnContext(ctx, event, slog.String("book_id", bookID), slog.Any("error", err))
	if recorder.onError != nil {
		recorder.onError(err)
	}
}
