package pipeline

import (
	"context"
	"fmt"

	"github.com/atomicleads/videoworker/tasks"

	"github.com/pkg/errors"
)

const (
	StartCreated = "created"
	StartSkipped = "skipped"
	StartError   = "error"
)

// StartResult reports what the submission gate decided.
type StartResult struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	TaskID int64  `json:"task_id,omitempty"`
}

// EnsurePipelineStarted decides whether a new video_render task is needed
// for the company and creates one if so. This is the single enforcement
// point against redundant renders; the check-then-insert sequence is
// advisory, not a database constraint, so concurrent callers can in theory
// both insert. Returns a non-nil error only on store failures.
func (p *Pipeline) EnsurePipelineStarted(ctx context.Context, companyID int64, force bool) (StartResult, error) {
	company, err := p.companies.Get(ctx, companyID)
	if err != nil {
		return StartResult{Status: StartError, Reason: err.Error()}, errors.Wrap(err, "fetching company")
	}
	if company == nil {
		return StartResult{Status: StartError, Reason: fmt.Sprintf("Company with id=%d not found.", companyID)}, nil
	}

	if company.HasVideoLink() && !force {
		return StartResult{Status: StartSkipped, Reason: "Company already has a custom video."}, nil
	}

	existing, err := p.store.List(ctx, tasks.Filter{CompanyID: companyID})
	if err != nil {
		return StartResult{Status: StartError, Reason: err.Error()}, errors.Wrap(err, "listing tasks")
	}

	relevantFound := false
	for _, t := range existing {
		if t.Type != tasks.TypeVideoRender && t.Type != tasks.TypeUploadVideo {
			continue
		}
		if t.Status == tasks.StatusPending || t.Status == tasks.StatusInProgress || t.Status == tasks.StatusCompleted {
			relevantFound = true
			break
		}
	}

	if relevantFound && !force {
		// Self-healing: a completed render with a failed upload means the
		// expensive part is done, only the upload needs another attempt.
		renderDone := false
		uploadReset := false
		for _, t := range existing {
			switch {
			case t.Type == tasks.TypeVideoRender && t.Status == tasks.StatusCompleted:
				renderDone = true
			case t.Type == tasks.TypeUploadVideo && t.Status == tasks.StatusFailed:
				if err := p.store.Reset(ctx, t.ID); err != nil {
					return StartResult{Status: StartError, Reason: err.Error()}, errors.Wrap(err, "resetting upload task")
				}
				uploadReset = true
			}
		}
		if renderDone && uploadReset {
			return StartResult{
				Status: StartSkipped,
				Reason: "Video render completed, resetting failed upload task to pending.",
			}, nil
		}
		return StartResult{
			Status: StartSkipped,
			Reason: "A render/upload task is already in progress or completed for this company.",
		}, nil
	}

	created, err := p.store.Add(ctx, tasks.AddParams{
		CompanyID: tasks.CompanyRef(companyID),
		Type:      tasks.TypeVideoRender,
	})
	if err != nil {
		return StartResult{Status: StartError, Reason: err.Error()}, errors.Wrap(err, "creating render task")
	}
	logger.Infow("render task created", "company_id", companyID, "task_id", created.ID, "force", force)
	return StartResult{Status: StartCreated, TaskID: created.ID}, nil
}

// ClearCompanyTasks deletes every task tied to a company. Data-purge only.
func (p *Pipeline) ClearCompanyTasks(ctx context.Context, companyID int64) (int64, error) {
	company, err := p.companies.Get(ctx, companyID)
	if err != nil {
		return 0, err
	}
	if company == nil {
		return 0, fmt.Errorf("company with id %d not found", companyID)
	}
	return p.store.DeleteForCompany(ctx, companyID)
}
