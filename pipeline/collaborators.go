package pipeline

import "context"

// Screenshotter captures a page screenshot into outputPath.
type Screenshotter interface {
	Capture(ctx context.Context, url, outputPath string) error
}

// Classifier assigns text to one of the supplied categories.
// Hint carries extra domain guidance for ambiguous inputs.
type Classifier interface {
	Classify(ctx context.Context, text string, categories []string, hint string) (string, error)
}

// Renderer composes the final video into outputPath. Long-running, the
// caller is fully occupied for the duration.
type Renderer interface {
	Render(ctx context.Context, cfg RenderConfig, outputPath string) error
}

// Uploader transfers a rendered file to cloud storage and returns a
// shareable link.
type Uploader interface {
	Upload(ctx context.Context, filePath, title string) (string, error)
}

// Collaborators bundles the external capabilities the pipeline drives.
type Collaborators struct {
	Screens  Screenshotter
	Classify Classifier
	Render   Renderer
	Upload   Uploader
}
