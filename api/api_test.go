package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/atomicleads/videoworker/companies"
	"github.com/atomicleads/videoworker/db"
	"github.com/atomicleads/videoworker/pipeline"
	"github.com/atomicleads/videoworker/tasks"

	"github.com/stretchr/testify/suite"
	"github.com/valyala/fasthttp"
)

type APISuite struct {
	suite.Suite
	db     *db.DB
	server *APIServer
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.db = db.OpenTestDB()
	s.Require().NoError(s.db.MigrateUp(tasks.InitialMigration))
	s.Require().NoError(s.db.MigrateUp(companies.InitialMigration))

	store := tasks.NewStore(s.db.DB)
	comps := companies.New(s.db)
	p := pipeline.New(store, comps, pipeline.Collaborators{}, pipeline.Config{})
	s.server = NewServer(Configure().Store(store).Companies(comps).Pipeline(p))
}

func (s *APISuite) TearDownTest() {
	s.db.Close()
}

func (s *APISuite) request(id string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&fasthttp.Request{}, nil, nil)
	ctx.SetUserValue("id", id)
	return ctx
}

func (s *APISuite) addCompany() *companies.Company {
	c, err := s.server.companies.Add(context.Background(), companies.AddParams{
		Name:          "Acme Trade School",
		WebsiteURL:    "https://example.com",
		NicheCategory: "welding",
	})
	s.Require().NoError(err)
	return c
}

func (s *APISuite) TestListTasks() {
	c := s.addCompany()
	t, err := s.server.store.Add(context.Background(), tasks.AddParams{
		CompanyID: tasks.CompanyRef(c.ID),
		Type:      tasks.TypeVideoRender,
	})
	s.Require().NoError(err)

	ctx := s.request("1")
	s.server.handleListTasks(ctx)
	s.Equal(http.StatusOK, ctx.Response.StatusCode())

	var views []taskView
	s.Require().NoError(json.Unmarshal(ctx.Response.Body(), &views))
	s.Require().Len(views, 1)
	s.Equal(t.ID, views[0].ID)
	s.Equal(tasks.TypeVideoRender, views[0].TaskType)
	s.Equal(tasks.StatusPending, views[0].Status)
	s.Empty(views[0].InstanceID)
	s.NotEmpty(views[0].CreatedAt)
}

func (s *APISuite) TestListTasksBadID() {
	ctx := s.request("banana")
	s.server.handleListTasks(ctx)
	s.Equal(http.StatusBadRequest, ctx.Response.StatusCode())
}

func (s *APISuite) TestStartVideo() {
	c := s.addCompany()

	ctx := s.request("1")
	s.server.handleStartVideo(ctx)
	s.Equal(http.StatusOK, ctx.Response.StatusCode())

	var res pipeline.StartResult
	s.Require().NoError(json.Unmarshal(ctx.Response.Body(), &res))
	s.Equal(pipeline.StartCreated, res.Status)
	s.NotZero(res.TaskID)

	ts, err := s.server.store.List(context.Background(), tasks.Filter{CompanyID: c.ID})
	s.Require().NoError(err)
	s.Len(ts, 1)

	// repeated submission reports the skip instead of stacking tasks
	ctx = s.request("1")
	s.server.handleStartVideo(ctx)
	s.Equal(http.StatusOK, ctx.Response.StatusCode())
	s.Require().NoError(json.Unmarshal(ctx.Response.Body(), &res))
	s.Equal(pipeline.StartSkipped, res.Status)
}

func (s *APISuite) TestStartVideoCompanyMissing() {
	ctx := s.request("404")
	s.server.handleStartVideo(ctx)
	s.Equal(http.StatusOK, ctx.Response.StatusCode())

	var res pipeline.StartResult
	s.Require().NoError(json.Unmarshal(ctx.Response.Body(), &res))
	s.Equal(pipeline.StartError, res.Status)
	s.Contains(res.Reason, "not found")
}

func (s *APISuite) TestPurgeTasks() {
	c := s.addCompany()
	for i := 0; i < 2; i++ {
		_, err := s.server.store.Add(context.Background(), tasks.AddParams{
			CompanyID: tasks.CompanyRef(c.ID),
			Type:      tasks.TypeVideoRender,
		})
		s.Require().NoError(err)
	}

	ctx := s.request("1")
	s.server.handlePurgeTasks(ctx)
	s.Equal(http.StatusOK, ctx.Response.StatusCode())

	var res map[string]int64
	s.Require().NoError(json.Unmarshal(ctx.Response.Body(), &res))
	s.EqualValues(2, res["deleted"])

	ts, err := s.server.store.List(context.Background(), tasks.Filter{CompanyID: c.ID})
	s.Require().NoError(err)
	s.Empty(ts)
}
