package companies

import (
	"database/sql"
	"strings"
	"time"
)

// Company owns at most one externally visible video link. A non-empty,
// URL-shaped CustomYoutubeVideo is the durable signal that the video
// pipeline produced a usable artifact for it.
type Company struct {
	ID                 int64
	Name               string
	WebsiteURL         string
	NicheCategory      string
	IsRunningAds       bool
	AdsURL             sql.NullString
	CustomYoutubeVideo sql.NullString
	Tags               sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasVideoLink reports whether the company already carries a usable video URL.
func (c *Company) HasVideoLink() bool {
	return c.CustomYoutubeVideo.Valid && strings.Contains(c.CustomYoutubeVideo.String, "http")
}
