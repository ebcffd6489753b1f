package pipeline

// Segment kinds understood by the renderer.
const (
	SegmentVideo        = "video"
	SegmentPipOverImage = "pip video over image"
	SegmentAudioOnly    = "audio only over image"
)

// Image roles resolved to concrete screenshot paths per task.
const (
	ImageWebsiteShot = "website_screenshot"
	ImageAdsShot     = "ads_screenshot"
)

// Segment is one instruction in a render configuration. VideoPath is
// relative to the content directory; Image names a screenshot role.
type Segment struct {
	Kind             string
	VideoPath        string
	Image            string
	Scale            float64
	StartingPosition string
	PipFadeIn        float64
	PipFadeOut       float64
}

type RenderConfig struct {
	Key      string
	Segments []Segment
	Width    int
	Height   int

	// resolved screenshot paths, filled in per task before rendering
	WebsiteShot string
	AdsShot     string
}

// ImagePath maps a segment's image role to its resolved screenshot file.
func (c RenderConfig) ImagePath(role string) string {
	switch role {
	case ImageWebsiteShot:
		return c.WebsiteShot
	case ImageAdsShot:
		return c.AdsShot
	}
	return ""
}

// RenderCategories are the niche buckets a company is classified into to
// pick a configuration variant.
var RenderCategories = []string{"skills program", "money coaching"}

// CategoryHint steers classification of fuzzy niches.
const CategoryHint = "blue collar and bootcamps and trade/vocational schools are usually 'skills program'"

// DefaultConfigs is the render configuration catalog, keyed by
// "<category> yes ads" / "<category> no ads".
var DefaultConfigs = map[string]RenderConfig{
	"skills program yes ads": {
		Key:    "skills program yes ads",
		Width:  1920,
		Height: 1080,
		Segments: []Segment{
			{Kind: SegmentPipOverImage, VideoPath: "skills_program/general/blue_collar_pip_1.mp4", Image: ImageWebsiteShot, Scale: 0.2, StartingPosition: "top right", PipFadeOut: 1.5},
			{Kind: SegmentVideo, VideoPath: "skills_program/general/blue_collar_fixed_1.mp4"},
			{Kind: SegmentAudioOnly, VideoPath: "skills_program/yes_ads/blue_collar_yes_ads_audio_only_1.mp4", Image: ImageAdsShot},
			{Kind: SegmentVideo, VideoPath: "skills_program/general/blue_collar_fixed_2.mp4"},
			{Kind: SegmentPipOverImage, VideoPath: "skills_program/general/blue_collar_pip_2.mp4", Image: ImageWebsiteShot, Scale: 0.2, StartingPosition: "top right", PipFadeIn: 2},
		},
	},
	"skills program no ads": {
		Key:    "skills program no ads",
		Width:  1920,
		Height: 1080,
		Segments: []Segment{
			{Kind: SegmentPipOverImage, VideoPath: "skills_program/general/blue_collar_pip_1.mp4", Image: ImageWebsiteShot, Scale: 0.2, StartingPosition: "top right", PipFadeOut: 1.5},
			{Kind: SegmentVideo, VideoPath: "skills_program/general/blue_collar_fixed_1.mp4"},
			{Kind: SegmentVideo, VideoPath: "skills_program/general/blue_collar_fixed_2.mp4"},
			{Kind: SegmentPipOverImage, VideoPath: "skills_program/general/blue_collar_pip_2.mp4", Image: ImageWebsiteShot, Scale: 0.2, StartingPosition: "top right", PipFadeIn: 2},
		},
	},
	"money coaching yes ads": {
		Key:    "money coaching yes ads",
		Width:  1920,
		Height: 1080,
		Segments: []Segment{
			{Kind: SegmentPipOverImage, VideoPath: "money_coaching/general/money_coaching_pip_1_1.mp4", Image: ImageWebsiteShot, Scale: 0.15, StartingPosition: "top right"},
			{Kind: SegmentPipOverImage, VideoPath: "money_coaching/yes_ads/money_coaching_pip_1_2.mp4", Image: ImageAdsShot, Scale: 0.15, StartingPosition: "top right"},
			{Kind: SegmentPipOverImage, VideoPath: "money_coaching/general/money_coaching_pip_1_3.mp4", Image: ImageWebsiteShot, Scale: 0.15, StartingPosition: "top right"},
		},
	},
	"money coaching no ads": {
		Key:    "money coaching no ads",
		Width:  1920,
		Height: 1080,
		Segments: []Segment{
			{Kind: SegmentPipOverImage, VideoPath: "money_coaching/general/money_coaching_pip_1_1.mp4", Image: ImageWebsiteShot, Scale: 0.15, StartingPosition: "top right"},
			{Kind: SegmentPipOverImage, VideoPath: "money_coaching/general/money_coaching_pip_1_3.mp4", Image: ImageWebsiteShot, Scale: 0.15, StartingPosition: "top right"},
		},
	},
}
