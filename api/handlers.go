package api

import (
	"net/http"
	"time"

	"github.com/atomicleads/videoworker/tasks"

	"github.com/valyala/fasthttp"
)

type taskView struct {
	ID         int64            `json:"id"`
	TaskType   string           `json:"task_type"`
	Status     string           `json:"status"`
	InstanceID string           `json:"instance_id,omitempty"`
	ResultData tasks.ResultData `json:"result_data"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
}

func viewOf(t *tasks.Task) taskView {
	rd, _ := t.Result()
	v := taskView{
		ID:         t.ID,
		TaskType:   t.Type,
		Status:     t.Status,
		ResultData: rd,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  t.UpdatedAt.Format(time.RFC3339),
	}
	if t.InstanceID.Valid {
		v.InstanceID = t.InstanceID.String
	}
	return v
}

func (s *APIServer) handleListTasks(ctx *fasthttp.RequestCtx) {
	id, err := companyID(ctx)
	if err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}

	ts, err := s.store.List(ctx, tasks.Filter{CompanyID: id})
	if err != nil {
		logger.Errorw("listing tasks", "company_id", id, "err", err)
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}
	views := make([]taskView, 0, len(ts))
	for _, t := range ts {
		views = append(views, viewOf(t))
	}
	respondJSON(ctx, http.StatusOK, views)
}

func (s *APIServer) handleStartVideo(ctx *fasthttp.RequestCtx) {
	id, err := companyID(ctx)
	if err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}
	force := ctx.QueryArgs().GetBool("force")

	res, err := s.pipeline.EnsurePipelineStarted(ctx, id, force)
	if err != nil {
		logger.Errorw("submission gate error", "company_id", id, "err", err)
		respondJSON(ctx, http.StatusInternalServerError, res)
		return
	}
	logger.Infow("submission gate", "company_id", id, "status", res.Status, "reason", res.Reason)
	respondJSON(ctx, http.StatusOK, res)
}

func (s *APIServer) handlePurgeTasks(ctx *fasthttp.RequestCtx) {
	id, err := companyID(ctx)
	if err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}

	n, err := s.pipeline.ClearCompanyTasks(ctx, id)
	if err != nil {
		logger.Errorw("purging tasks", "company_id", id, "err", err)
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}
	respondJSON(ctx, http.StatusOK, map[string]int64{"deleted": n})
}
