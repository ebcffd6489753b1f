package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/atomicleads/videoworker/companies"
	"github.com/atomicleads/videoworker/internal/metrics"
	"github.com/atomicleads/videoworker/pipeline"
	"github.com/atomicleads/videoworker/pkg/timer"
	"github.com/atomicleads/videoworker/tasks"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// APIServer exposes the task store and the submission gate over HTTP.
type APIServer struct {
	*Configuration
	httpServer *fasthttp.Server
}

type Configuration struct {
	debug     bool
	addr      string
	store     *tasks.Store
	companies *companies.Queries
	pipeline  *pipeline.Pipeline
}

func Configure() *Configuration {
	return &Configuration{
		addr: ":8080",
	}
}

func (c *Configuration) Debug(debug bool) *Configuration {
	c.debug = debug
	return c
}

func (c *Configuration) Addr(addr string) *Configuration {
	c.addr = addr
	return c
}

func (c *Configuration) Store(store *tasks.Store) *Configuration {
	c.store = store
	return c
}

func (c *Configuration) Companies(q *companies.Queries) *Configuration {
	c.companies = q
	return c
}

func (c *Configuration) Pipeline(p *pipeline.Pipeline) *Configuration {
	c.pipeline = p
	return c
}

func NewServer(cfg *Configuration) *APIServer {
	r := router.New()

	s := &APIServer{
		Configuration: cfg,
		httpServer: &fasthttp.Server{
			Handler: metricsMiddleware(corsMiddleware(r.Handler)),
		},
	}

	r.GET("/api/v1/companies/{id:[0-9]+}/tasks", s.handleListTasks)
	r.POST("/api/v1/companies/{id:[0-9]+}/video", s.handleStartVideo)
	r.DELETE("/api/v1/companies/{id:[0-9]+}/tasks", s.handlePurgeTasks)
	r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))

	if !s.debug {
		r.PanicHandler = handlePanic
	}
	return s
}

func (s *APIServer) Addr() string {
	return s.addr
}

func (s *APIServer) URL() string {
	return "http://" + s.addr
}

func (s *APIServer) Start() error {
	logger.Infow("listening", "bind", s.addr, "debug", s.debug)
	return s.httpServer.ListenAndServe(s.addr)
}

func (s *APIServer) Shutdown() error {
	logger.Info("shutting down...")
	return s.httpServer.Shutdown()
}

func handlePanic(ctx *fasthttp.RequestCtx, p interface{}) {
	ctx.SetStatusCode(http.StatusInternalServerError)
	logger.Errorw("panicked", "url", ctx.Request.URI(), "panic", p)
}

func corsMiddleware(h fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		h(ctx)
	}
}

func metricsMiddleware(h fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		t := timer.Start()
		h(ctx)
		metrics.HTTPAPIRequests.WithLabelValues(fmt.Sprintf("%v", ctx.Response.StatusCode())).Observe(t.Duration())
	}
}

func companyID(ctx *fasthttp.RequestCtx) (int64, error) {
	return strconv.ParseInt(ctx.UserValue("id").(string), 10, 64)
}

func respondJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		logger.Errorw("response encoding error", "err", err)
	}
}
