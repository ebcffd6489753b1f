package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/atomicleads/videoworker/internal/metrics"
	"github.com/atomicleads/videoworker/pkg/timer"
	"github.com/atomicleads/videoworker/tasks"

	"github.com/pkg/errors"
)

const (
	errCompanyNotFound   = "Company not found"
	errMissingFields     = "Missing required fields: website_url or niche_category"
	errScreenshotFailed  = "Error when taking screenshot. The website likely blocked us or the image is unusable for the video"
	errNoRenderedFile    = "No rendered_file found"
	errUnknownRenderConf = "no render config for key"
)

// processRender runs the video_render handler for a claimed task: capture
// screenshots, pick a config variant, render, then spawn the paired upload
// task. Validation and screenshot failures are terminal without an error
// return; failures past that point also mark the task failed and are
// returned so the worker loop observes them too.
func (p *Pipeline) processRender(ctx context.Context, t *tasks.Task, instanceID string) error {
	ll := logger.With("task_id", t.ID, "instance_id", instanceID)

	company, err := p.companyFor(ctx, t)
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "resolving company")
	}
	if company == nil {
		p.markFailed(ctx, t.ID, errCompanyNotFound)
		return nil
	}

	if company.WebsiteURL == "" || company.NicheCategory == "" {
		p.markFailed(ctx, t.ID, errMissingFields)
		return nil
	}

	websiteShot := filepath.Join(p.cfg.TempPath, fmt.Sprintf("website_screenshot_%s.png", instanceID))
	adsShot := filepath.Join(p.cfg.TempPath, fmt.Sprintf("ads_screenshot_%s.png", instanceID))

	if err := p.collab.Screens.Capture(ctx, company.WebsiteURL, websiteShot); err != nil {
		ll.Warnw("website screenshot failed", "url", company.WebsiteURL, "err", err)
		p.markFailed(ctx, t.ID, errScreenshotFailed)
		return nil
	}

	hasAdsShot := false
	if company.AdsURL.Valid && company.AdsURL.String != "" {
		// best-effort, a broken ads page must not sink the render
		if err := p.collab.Screens.Capture(ctx, company.AdsURL.String, adsShot); err != nil {
			ll.Warnw("ads screenshot failed", "url", company.AdsURL.String, "err", err)
		} else {
			hasAdsShot = true
		}
	}

	category, err := p.collab.Classify.Classify(ctx, company.NicheCategory, RenderCategories, CategoryHint)
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "classifying niche")
	}
	configKey := category + " no ads"
	if hasAdsShot {
		configKey = category + " yes ads"
	}
	cfg, ok := p.configs[configKey]
	if !ok {
		msg := fmt.Sprintf("%s %q", errUnknownRenderConf, configKey)
		p.markFailed(ctx, t.ID, msg)
		return errors.New(msg)
	}
	cfg.WebsiteShot = websiteShot
	cfg.AdsShot = adsShot
	// resolve content paths on a copy, the catalog entry is shared
	segments := make([]Segment, len(cfg.Segments))
	copy(segments, cfg.Segments)
	for i, s := range segments {
		segments[i].VideoPath = filepath.Join(p.cfg.ContentPath, s.VideoPath)
	}
	cfg.Segments = segments

	outputFilename := filepath.Join(p.cfg.OutputPath, fmt.Sprintf("video_task_%d.mp4", t.ID))

	ll.Infow("starting render", "config", configKey, "out", outputFilename)
	tmr := timer.Start()
	metrics.RendersRunning.Inc()
	err = p.collab.Render.Render(ctx, cfg, outputFilename)
	metrics.RendersRunning.Dec()
	metrics.RenderSpentSeconds.Add(tmr.Stop())
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "rendering video")
	}
	ll.Infow("render complete", "seconds_spent", tmr.String())

	// The render took a while. Guard against the task having been
	// administratively reset or failed over to another worker meanwhile.
	fresh, err := p.store.Get(ctx, t.ID)
	if err != nil {
		return errors.Wrap(err, "re-fetching task after render")
	}
	if fresh == nil || fresh.Status != tasks.StatusInProgress {
		ll.Warnw("task altered during render, not completing", "task_id", t.ID)
		return nil
	}

	err = p.store.Complete(ctx, t.ID, tasks.ResultData{
		OutputFilename: outputFilename,
		ConfigUsed:     configKey,
	})
	if err != nil {
		p.markFailed(ctx, t.ID, err.Error())
		return errors.Wrap(err, "completing render task")
	}

	up, err := p.store.Add(ctx, tasks.AddParams{
		CompanyID: t.CompanyID,
		Type:      tasks.TypeUploadVideo,
		Result:    &tasks.ResultData{RenderedFile: outputFilename},
	})
	if err != nil {
		return errors.Wrap(err, "creating upload task")
	}
	ll.Infow("upload task created", "upload_task_id", up.ID)
	return nil
}
