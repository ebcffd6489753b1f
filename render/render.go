package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/atomicleads/videoworker/pipeline"

	"github.com/pkg/errors"

	"github.com/floostack/transcoder/ffmpeg"
)

var ffmpegConf = ffmpeg.Config{
	FfmpegBinPath:   "",
	FfprobeBinPath:  "",
	ProgressEnabled: true,
	Verbose:         false,
}

func init() {
	var err error
	ffmpegConf.FfmpegBinPath, err = exec.LookPath("ffmpeg")
	if err != nil {
		ffmpegConf.FfmpegBinPath = firstExistingFile([]string{"/usr/local/bin/ffmpeg", "/usr/bin/ffmpeg"})
	}
	ffmpegConf.FfprobeBinPath, err = exec.LookPath("ffprobe")
	if err != nil {
		ffmpegConf.FfprobeBinPath = firstExistingFile([]string{"/usr/local/bin/ffprobe", "/usr/bin/ffprobe"})
	}
	logger.Infow("ffmpeg configuration", "conf", ffmpegConf)
}

func firstExistingFile(paths []string) string {
	for _, p := range paths {
		_, err := os.Stat(p)
		if !os.IsNotExist(err) {
			return p
		}
	}
	return ""
}

// FFmpeg composes segment instructions into a single video file.
type FFmpeg struct{}

func New() (*FFmpeg, error) {
	if ffmpegConf.FfmpegBinPath == "" || ffmpegConf.FfprobeBinPath == "" {
		return nil, errors.New("ffmpeg/ffprobe not found")
	}
	return &FFmpeg{}, nil
}

// Render builds the full ffmpeg invocation for the config's segments and
// blocks until encoding finishes.
func (f *FFmpeg) Render(ctx context.Context, cfg pipeline.RenderConfig, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(cfg.Segments) == 0 {
		return errors.New("render config has no segments")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return err
	}

	durations := make([]float64, len(cfg.Segments))
	for i, s := range cfg.Segments {
		d, err := probeDuration(s.VideoPath)
		if err != nil {
			return errors.Wrapf(err, "probing %s", s.VideoPath)
		}
		durations[i] = d
	}

	args, err := BuildArguments(cfg, durations)
	if err != nil {
		return err
	}

	ll := logger.With("out", outputPath, "config", cfg.Key)
	ll.Infow("starting render", "segments", len(cfg.Segments))

	conf := ffmpegConf
	progress, err := ffmpeg.New(&conf).
		Input(cfg.Segments[0].VideoPath).
		Output(outputPath).
		Start(args)
	if err != nil {
		return errors.Wrap(err, "starting ffmpeg")
	}
	for p := range progress {
		ll.Debugw("rendering", "progress", fmt.Sprintf("%v", p.GetProgress()))
	}

	fi, err := os.Stat(outputPath)
	if err != nil {
		return errors.Wrap(err, "render produced no output")
	}
	if fi.Size() == 0 {
		return errors.New("render produced an empty file")
	}
	ll.Infow("render finished", "size", fi.Size())
	return nil
}

// probeDuration uses ffprobe to read a clip's duration in seconds.
func probeDuration(file string) (float64, error) {
	metadata := &ffmpeg.Metadata{}

	var outb, errb bytes.Buffer

	args := []string{"-i", file, "-print_format", "json", "-show_format", "-show_streams", "-show_error"}

	cmd := exec.Command(ffmpegConf.FfprobeBinPath, args...)
	cmd.Stdout = &outb
	cmd.Stderr = &errb

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error executing (%s) | error: %s | message: %s %s", file, err, outb.String(), errb.String())
	}

	if err := json.Unmarshal(outb.Bytes(), &metadata); err != nil {
		return 0, err
	}

	return strconv.ParseFloat(metadata.GetFormat().GetDuration(), 64)
}
