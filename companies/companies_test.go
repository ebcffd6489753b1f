package companies

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/atomicleads/videoworker/db"

	"github.com/Pallinder/go-randomdata"
	"github.com/stretchr/testify/suite"
)

type CompaniesSuite struct {
	suite.Suite
	db *db.DB
	q  *Queries
}

func TestCompaniesSuite(t *testing.T) {
	suite.Run(t, new(CompaniesSuite))
}

func (s *CompaniesSuite) SetupSuite() {
	rand.Seed(time.Now().UTC().UnixNano())
}

func (s *CompaniesSuite) SetupTest() {
	s.db = db.OpenTestDB()
	s.Require().NoError(s.db.MigrateUp(InitialMigration))
	s.q = New(s.db)
}

func (s *CompaniesSuite) TearDownTest() {
	s.db.Close()
}

func (s *CompaniesSuite) TestAddGet() {
	name := randomdata.SillyName()
	c, err := s.q.Add(context.Background(), AddParams{
		Name:          name,
		WebsiteURL:    "https://example.com",
		NicheCategory: "hvac bootcamp",
		IsRunningAds:  true,
		AdsURL:        "https://facebook.com/ads/library/example",
	})
	s.Require().NoError(err)
	s.Equal(name, c.Name)
	s.Equal("https://example.com", c.WebsiteURL)
	s.Equal("hvac bootcamp", c.NicheCategory)
	s.True(c.IsRunningAds)
	s.Require().True(c.AdsURL.Valid)
	s.Equal("https://facebook.com/ads/library/example", c.AdsURL.String)
	s.False(c.CustomYoutubeVideo.Valid)
	s.False(c.Tags.Valid)
	s.False(c.CreatedAt.IsZero())

	got, err := s.q.Get(context.Background(), c.ID)
	s.Require().NoError(err)
	s.Equal(c.Name, got.Name)

	missing, err := s.q.Get(context.Background(), 404)
	s.NoError(err)
	s.Nil(missing)
}

func (s *CompaniesSuite) TestList() {
	for i := 0; i < 5; i++ {
		_, err := s.q.Add(context.Background(), AddParams{
			Name:          randomdata.SillyName(),
			WebsiteURL:    "https://example.com",
			NicheCategory: "money coaching",
		})
		s.Require().NoError(err)
	}
	cs, err := s.q.List(context.Background())
	s.Require().NoError(err)
	s.Len(cs, 5)
}

func (s *CompaniesSuite) TestSetVideoLink() {
	c, err := s.q.Add(context.Background(), AddParams{
		Name:          randomdata.SillyName(),
		WebsiteURL:    "https://example.com",
		NicheCategory: "welding school",
	})
	s.Require().NoError(err)
	s.False(c.HasVideoLink())

	link := "https://files.example.com/videos/acme.mp4"
	s.Require().NoError(s.q.SetVideoLink(context.Background(), c.ID, link))

	fresh, err := s.q.Get(context.Background(), c.ID)
	s.Require().NoError(err)
	s.Require().True(fresh.CustomYoutubeVideo.Valid)
	s.Equal(link, fresh.CustomYoutubeVideo.String)
	s.True(fresh.HasVideoLink())

	s.ErrorContains(s.q.SetVideoLink(context.Background(), 404, link), "not found")
}

func (s *CompaniesSuite) TestHasVideoLink() {
	c := &Company{}
	s.False(c.HasVideoLink())

	// legacy rows carry non-URL markers in the video column
	c.CustomYoutubeVideo.Valid = true
	c.CustomYoutubeVideo.String = "requested"
	s.False(c.HasVideoLink())

	c.CustomYoutubeVideo.String = "http://youtube.com/watch?v=x"
	s.True(c.HasVideoLink())
}

func (s *CompaniesSuite) TestDialectWiring() {
	s.Equal(dialectSQLite, s.q.dialect)
	s.Equal(dialectPostgres, NewPostgres(s.db).dialect)

	// transaction binding keeps the dialect, inserts inside the upload
	// completion transaction must resolve ids the backend's way
	tx, err := s.db.Begin()
	s.Require().NoError(err)
	defer tx.Rollback()
	s.Equal(dialectPostgres, NewPostgres(s.db).WithTx(tx).dialect)
	s.Equal(dialectSQLite, s.q.WithTx(tx).dialect)
}

func (s *CompaniesSuite) TestDelete() {
	c, err := s.q.Add(context.Background(), AddParams{
		Name:          randomdata.SillyName(),
		WebsiteURL:    "https://example.com",
		NicheCategory: "trading",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.q.Delete(context.Background(), c.ID))
	fresh, err := s.q.Get(context.Background(), c.ID)
	s.NoError(err)
	s.Nil(fresh)
}
