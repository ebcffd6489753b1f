package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/atomicleads/videoworker/api"
	"github.com/atomicleads/videoworker/capture"
	"github.com/atomicleads/videoworker/classify"
	"github.com/atomicleads/videoworker/companies"
	"github.com/atomicleads/videoworker/db"
	"github.com/atomicleads/videoworker/drive"
	"github.com/atomicleads/videoworker/internal/config"
	"github.com/atomicleads/videoworker/pipeline"
	"github.com/atomicleads/videoworker/pkg/logging"
	"github.com/atomicleads/videoworker/pkg/logging/zapadapter"
	"github.com/atomicleads/videoworker/render"
	"github.com/atomicleads/videoworker/tasks"

	"github.com/alecthomas/kong"
)

var logger = logging.Create("main", logging.Dev)

var CLI struct {
	Worker struct {
		Instances int `optional name:"instances" help:"Number of worker loops to run." default:"1"`
	} `cmd help:"Run the video pipeline worker."`
	Start struct {
		CompanyID int64 `arg name:"company-id" help:"Company to start the pipeline for."`
		Force     bool  `optional name:"force" help:"Create a render task regardless of existing tasks."`
	} `cmd help:"Run the submission gate for one company."`
	Tasks struct {
		Status string `optional name:"status" help:"Only list tasks with this status."`
	} `cmd help:"List tasks."`
	Reset struct {
		From string `required name:"from" enum:"failed,in_progress" help:"Status to reset back to pending."`
	} `cmd help:"Bulk-reset failed or in_progress tasks to pending."`
	Purge struct {
		CompanyID int64 `arg name:"company-id" help:"Company whose tasks should be deleted."`
	} `cmd help:"Delete all tasks of a company."`
	ServeAPI struct {
	} `cmd name:"serve-api" help:"Run the status/trigger HTTP API."`
}

type services struct {
	cfg       *config.WorkerConfig
	store     *tasks.Store
	companies *companies.Queries
}

func openServices() *services {
	cfg, err := config.ReadWorkerConfig()
	if err != nil {
		logger.Fatal(err)
	}

	var store *tasks.Store
	var comps *companies.Queries
	var sdb *sql.DB
	if cfg.DB.DSN != "" {
		sdb, err = tasks.ConnectDB(tasks.DefaultDBConfig().DSN(cfg.DB.DSN))
		if err != nil {
			logger.Fatal(err)
		}
		store = tasks.NewPostgresStore(sdb)
		comps = companies.NewPostgres(sdb)
	} else {
		wdb := db.OpenDB(cfg.DB.Path)
		if err := wdb.MigrateUp(tasks.InitialMigration); err != nil {
			logger.Fatal(err)
		}
		if err := wdb.MigrateUp(companies.InitialMigration); err != nil {
			logger.Fatal(err)
		}
		sdb = wdb.DB
		store = tasks.NewStore(sdb)
		comps = companies.New(sdb)
	}

	return &services{
		cfg:       cfg,
		store:     store,
		companies: comps,
	}
}

func (s *services) buildPipeline(collab pipeline.Collaborators) *pipeline.Pipeline {
	return pipeline.New(s.store, s.companies, collab, pipeline.Config{
		TempPath:    s.cfg.TempPath,
		OutputPath:  s.cfg.OutputPath,
		ContentPath: s.cfg.ContentPath,
	})
}

func (s *services) realCollaborators() pipeline.Collaborators {
	screens, err := capture.New()
	if err != nil {
		logger.Fatal(err)
	}
	renderer, err := render.New()
	if err != nil {
		logger.Fatal(err)
	}
	uploader, err := drive.New(s.cfg.Upload)
	if err != nil {
		logger.Fatal(err)
	}
	return pipeline.Collaborators{
		Screens:  screens,
		Classify: classify.New(),
		Render:   renderer,
		Upload:   uploader,
	}
}

func main() {
	kctx := kong.Parse(&CLI)
	s := openServices()
	ctx := context.Background()

	switch kctx.Command() {
	case "worker":
		for _, p := range []string{s.cfg.TempPath, s.cfg.OutputPath} {
			if err := os.MkdirAll(p, os.ModePerm); err != nil {
				logger.Fatal(err)
			}
		}
		p := s.buildPipeline(s.realCollaborators())

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		runCtx, cancel := context.WithCancel(ctx)

		stats := pipeline.StartQueueStats(s.store, s.cfg.PollInterval, zapadapter.NewKV(nil))
		defer stats.Stop()

		var wg sync.WaitGroup
		for i := 0; i < CLI.Worker.Instances; i++ {
			w := pipeline.NewWorker(p, s.cfg.PollInterval, s.cfg.StuckTimeout)
			logger.Infow("starting video renderer instance", "instance_id", w.InstanceID())
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.Run(runCtx)
			}()
		}
		<-stop
		cancel()
		wg.Wait()
	case "start <company-id>":
		p := s.buildPipeline(pipeline.Collaborators{})
		res, err := p.EnsurePipelineStarted(ctx, CLI.Start.CompanyID, CLI.Start.Force)
		if err != nil {
			logger.Fatal(err)
		}
		fmt.Printf("%s", res.Status)
		if res.Reason != "" {
			fmt.Printf(": %s", res.Reason)
		}
		if res.TaskID != 0 {
			fmt.Printf(" (task %d)", res.TaskID)
		}
		fmt.Println()
	case "tasks":
		ts, err := s.store.List(ctx, tasks.Filter{Status: CLI.Tasks.Status})
		if err != nil {
			logger.Fatal(err)
		}
		for _, t := range ts {
			rd, _ := t.Result()
			fmt.Printf("%d\t%s\t%s\tcompany=%v\t%+v\n", t.ID, t.Type, t.Status, t.CompanyID.Int64, rd)
		}
	case "reset":
		n, err := s.store.ResetByStatus(ctx, CLI.Reset.From)
		if err != nil {
			logger.Fatal(err)
		}
		fmt.Printf("Reset %d tasks to pending.\n", n)
	case "purge <company-id>":
		p := s.buildPipeline(pipeline.Collaborators{})
		n, err := p.ClearCompanyTasks(ctx, CLI.Purge.CompanyID)
		if err != nil {
			logger.Fatal(err)
		}
		fmt.Printf("Deleted %d tasks.\n", n)
	case "serve-api":
		p := s.buildPipeline(pipeline.Collaborators{})
		server := api.NewServer(api.Configure().
			Addr(s.cfg.Bind).
			Debug(s.cfg.Debug).
			Store(s.store).
			Companies(s.companies).
			Pipeline(p))
		if err := server.Start(); err != nil {
			logger.Fatal(err)
		}
	default:
		panic(kctx.Command())
	}
}
