package pipeline

import (
	"context"
	"fmt"

	"github.com/atomicleads/videoworker/companies"
	"github.com/atomicleads/videoworker/tasks"
)

// Config carries the filesystem layout the handlers work with.
type Config struct {
	// TempPath receives per-instance screenshots.
	TempPath string
	// OutputPath receives rendered videos.
	OutputPath string
	// ContentPath holds the stock footage referenced by render configs.
	ContentPath string
}

// Pipeline executes the per-task-type state machine over the task store.
type Pipeline struct {
	store     *tasks.Store
	companies *companies.Queries
	collab    Collaborators
	configs   map[string]RenderConfig
	cfg       Config
}

func New(store *tasks.Store, comps *companies.Queries, collab Collaborators, cfg Config) *Pipeline {
	return &Pipeline{
		store:     store,
		companies: comps,
		collab:    collab,
		configs:   DefaultConfigs,
		cfg:       cfg,
	}
}

// Dispatch routes a claimed task to its type handler. Unknown types are
// failed immediately without a handler; the set of stored type strings is
// open, the recognized set is not.
func (p *Pipeline) Dispatch(ctx context.Context, t *tasks.Task, instanceID string) error {
	switch t.Type {
	case tasks.TypeVideoRender:
		return p.processRender(ctx, t, instanceID)
	case tasks.TypeUploadVideo:
		return p.processUpload(ctx, t)
	default:
		logger.Warnw("unknown task type", "task_id", t.ID, "task_type", t.Type)
		return p.store.Fail(ctx, t.ID, fmt.Sprintf("unknown task type: %s", t.Type))
	}
}

// markFailed leaves the task in a terminal, explained state. Best-effort:
// the task is re-fetched first since the caller's copy may be stale or the
// row may be gone.
func (p *Pipeline) markFailed(ctx context.Context, id int64, msg string) {
	t, err := p.store.Get(ctx, id)
	if err != nil {
		logger.Errorw("re-fetching task for failure marking", "task_id", id, "err", err)
		return
	}
	if t == nil {
		logger.Warnw("task gone before failure could be recorded", "task_id", id)
		return
	}
	if err := p.store.Fail(ctx, id, msg); err != nil {
		logger.Errorw("marking task failed", "task_id", id, "err", err)
	}
}

// companyFor resolves the task's owning company, nil when unset or missing.
func (p *Pipeline) companyFor(ctx context.Context, t *tasks.Task) (*companies.Company, error) {
	if !t.CompanyID.Valid {
		return nil, nil
	}
	return p.companies.Get(ctx, t.CompanyID.Int64)
}
