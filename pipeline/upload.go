package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicleads/videoworker/internal/metrics"
	"github.com/atomicleads/videoworker/tasks"

	"github.com/pkg/errors"
)

// uploadTitleLabel goes between the company name and the month in upload titles.
const uploadTitleLabel = "Atomic Enrollment"

// processUpload runs the upload_video handler: resolve the rendered file,
// push it to cloud storage and persist the link on both the company and the
// task in one transaction.
func (p *Pipeline) processUpload(ctx context.Context, t *tasks.Task) error {
	ll := logger.With("task_id", t.ID)

	// only claimed tasks are processed, an unclaimed copy means the caller
	// raced an administrative status change
	if t.Status != tasks.StatusInProgress {
		ll.Warnw("task not in progress, skipping upload", "status", t.Status)
		return nil
	}

	rd, err := t.Result()
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "decoding task result")
	}

	videoPath := rd.RenderedFile
	if videoPath == "" && t.CompanyID.Valid {
		// recover the path from the company's most recent completed render
		renders, err := p.store.List(ctx, tasks.Filter{
			CompanyID: t.CompanyID.Int64,
			Type:      tasks.TypeVideoRender,
			Status:    tasks.StatusCompleted,
		})
		if err != nil {
			p.markFailed(ctx, t.ID, err.Error())
			return errors.Wrap(err, "looking up render task")
		}
		if len(renders) > 0 {
			rrd, err := renders[len(renders)-1].Result()
			if err == nil {
				videoPath = rrd.OutputFilename
			}
		}
	}
	if videoPath == "" {
		p.markFailed(ctx, t.ID, errNoRenderedFile)
		return nil
	}

	company, err := p.companyFor(ctx, t)
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "resolving company")
	}
	if company == nil {
		p.markFailed(ctx, t.ID, errCompanyNotFound)
		return nil
	}

	title := fmt.Sprintf("%s | %s | %s", company.Name, uploadTitleLabel, time.Now().Format("January 2006"))

	ll.Infow("starting upload", "file", videoPath, "title", title)
	metrics.UploadsRunning.Inc()
	link, err := p.collab.Upload.Upload(ctx, videoPath, title)
	metrics.UploadsRunning.Dec()
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "uploading video")
	}

	// Completion write and the company's video-link write share one
	// transaction so the "has a video" signal never drifts from the task.
	tx, err := p.store.DB.BeginTx(ctx, nil)
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "starting completion transaction")
	}
	fresh, err := p.store.WithTx(tx).Get(ctx, t.ID)
	if err != nil || fresh == nil || fresh.Status != tasks.StatusInProgress {
		tx.Rollback()
		if err != nil {
			return errors.Wrap(err, "re-fetching task before completion")
		}
		ll.Warnw("task altered during upload, not completing", "task_id", t.ID)
		return nil
	}
	if err := p.companies.WithTx(tx).SetVideoLink(ctx, company.ID, link); err != nil {
		tx.Rollback()
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "saving company video link")
	}
	if err := p.store.WithTx(tx).Complete(ctx, t.ID, tasks.ResultData{DriveLink: link}); err != nil {
		tx.Rollback()
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "completing upload task")
	}
	if err := tx.Commit(); err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "committing upload completion")
	}

	ll.Infow("upload complete", "link", link)
	return nil
}
