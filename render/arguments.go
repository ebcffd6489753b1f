package render

import (
	"fmt"
	"strings"

	"github.com/atomicleads/videoworker/pipeline"

	"github.com/pkg/errors"
)

const overlayMargin = 48

// Arguments is a raw ffmpeg argument list satisfying the transcoder
// Options interface.
type Arguments struct {
	args []string
}

func (a Arguments) GetStrArguments() []string {
	return a.args
}

// BuildArguments translates segment instructions into one ffmpeg filter
// graph: every segment becomes a uniform video+audio pair, screenshots are
// looped still inputs bounded by their segment's clip, and the pairs are
// concatenated. durations must hold each segment clip's length in seconds.
func BuildArguments(cfg pipeline.RenderConfig, durations []float64) (Arguments, error) {
	if len(durations) != len(cfg.Segments) {
		return Arguments{}, errors.New("durations do not match segments")
	}

	var args []string

	// input 0 is the first segment's clip, fed through Input()
	for _, s := range cfg.Segments[1:] {
		args = append(args, "-i", s.VideoPath)
	}
	imageIdx := map[string]int{}
	next := len(cfg.Segments)
	for _, s := range cfg.Segments {
		if s.Image == "" {
			continue
		}
		if _, ok := imageIdx[s.Image]; ok {
			continue
		}
		p := cfg.ImagePath(s.Image)
		if p == "" {
			return Arguments{}, fmt.Errorf("no screenshot available for role %q", s.Image)
		}
		args = append(args, "-loop", "1", "-i", p)
		imageIdx[s.Image] = next
		next++
	}

	var (
		chains []string
		concat []string
	)
	for i, s := range cfg.Segments {
		out := fmt.Sprintf("s%d", i)
		switch s.Kind {
		case pipeline.SegmentVideo:
			chains = append(chains, fmt.Sprintf(
				"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1[%s]",
				i, cfg.Width, cfg.Height, cfg.Width, cfg.Height, out))
		case pipeline.SegmentPipOverImage:
			bg := fmt.Sprintf("bg%d", i)
			pip := fmt.Sprintf("pip%d", i)
			chains = append(chains, fmt.Sprintf(
				"[%d:v]scale=%d:%d,setsar=1[%s]", imageIdx[s.Image], cfg.Width, cfg.Height, bg))
			pipChain := fmt.Sprintf("[%d:v]scale=iw*%g:-1", i, s.Scale)
			if s.PipFadeIn > 0 {
				pipChain += fmt.Sprintf(",fade=t=in:st=0:d=%g:alpha=1", s.PipFadeIn)
			}
			if s.PipFadeOut > 0 && durations[i] > s.PipFadeOut {
				pipChain += fmt.Sprintf(",fade=t=out:st=%g:d=%g:alpha=1", durations[i]-s.PipFadeOut, s.PipFadeOut)
			}
			chains = append(chains, fmt.Sprintf("%s[%s]", pipChain, pip))
			chains = append(chains, fmt.Sprintf(
				"[%s][%s]overlay=%s:shortest=1[%s]", bg, pip, overlayPosition(s.StartingPosition), out))
		case pipeline.SegmentAudioOnly:
			bg := fmt.Sprintf("bg%d", i)
			hidden := fmt.Sprintf("hid%d", i)
			chains = append(chains, fmt.Sprintf(
				"[%d:v]scale=%d:%d,setsar=1[%s]", imageIdx[s.Image], cfg.Width, cfg.Height, bg))
			// the clip contributes audio only, parked outside the frame to
			// bound the looped screenshot's duration
			chains = append(chains, fmt.Sprintf("[%d:v]scale=2:2[%s]", i, hidden))
			chains = append(chains, fmt.Sprintf(
				"[%s][%s]overlay=-10:-10:shortest=1[%s]", bg, hidden, out))
		default:
			return Arguments{}, fmt.Errorf("unknown segment kind %q", s.Kind)
		}
		concat = append(concat, fmt.Sprintf("[%s][%d:a]", out, i))
	}

	graph := strings.Join(chains, ";") + ";" +
		strings.Join(concat, "") +
		fmt.Sprintf("concat=n=%d:v=1:a=1[vout][aout]", len(cfg.Segments))

	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-r", "30",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ac", "2",
		"-ar", "44100",
		"-y",
	)
	return Arguments{args: args}, nil
}

func overlayPosition(pos string) string {
	switch pos {
	case "top left":
		return fmt.Sprintf("%d:%d", overlayMargin, overlayMargin)
	case "top right":
		return fmt.Sprintf("main_w-overlay_w-%d:%d", overlayMargin, overlayMargin)
	case "bottom left":
		return fmt.Sprintf("%d:main_h-overlay_h-%d", overlayMargin, overlayMargin)
	case "bottom right":
		return fmt.Sprintf("main_w-overlay_w-%d:main_h-overlay_h-%d", overlayMargin, overlayMargin)
	}
	return "(main_w-overlay_w)/2:(main_h-overlay_h)/2"
}
