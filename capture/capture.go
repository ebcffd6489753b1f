package capture

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
)

var chromiumBins = []string{"chromium", "chromium-browser", "google-chrome", "chrome"}

const DefaultTimeout = 90 * time.Second

// Chromium captures page screenshots with a headless browser binary.
type Chromium struct {
	binPath    string
	timeout    time.Duration
	windowSize string
}

func New() (*Chromium, error) {
	for _, name := range chromiumBins {
		if p, err := exec.LookPath(name); err == nil {
			logger.Infow("found browser binary", "path", p)
			return &Chromium{binPath: p, timeout: DefaultTimeout, windowSize: "1920,1080"}, nil
		}
	}
	return nil, errors.New("no chromium/chrome binary found")
}

// NewWithBinary skips binary discovery, mostly for tests.
func NewWithBinary(binPath string) *Chromium {
	return &Chromium{binPath: binPath, timeout: DefaultTimeout, windowSize: "1920,1080"}
}

func (c *Chromium) Timeout(d time.Duration) *Chromium {
	c.timeout = d
	return c
}

// Capture renders url headlessly and writes a PNG to outputPath. A page
// that loads but produces an empty file is reported as an error, the
// screenshot would be unusable for the video.
func (c *Chromium) Capture(ctx context.Context, url, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var errb bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binPath,
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--hide-scrollbars",
		"--window-size="+c.windowSize,
		"--screenshot="+outputPath,
		url,
	)
	cmd.Stderr = &errb

	logger.Debugw("capturing screenshot", "url", url, "out", outputPath)
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "screenshot failed: %s", errb.String())
	}

	fi, err := os.Stat(outputPath)
	if err != nil {
		return errors.Wrap(err, "screenshot file missing")
	}
	if fi.Size() == 0 {
		return errors.New("screenshot file is empty")
	}
	return nil
}
