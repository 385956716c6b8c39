package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Shaheer-Khan1/AdGenerator/internal/domain"
	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
)

// Request carries everything the composer needs to produce one video.
type Request struct {
	ClipPaths  []string
	AudioPath  string
	Script     string
	WorkDir    string
	OutputPath string
}

// Composer produces the final video file and returns its path.
type Composer interface {
	Compose(ctx context.Context, req Request) (string, error)
}

const (
	outputWidth  = 720
	outputHeight = 1280
	captionSize  = 24
)

// FFmpegComposer shells out to ffmpeg for every transform step.
type FFmpegComposer struct {
	binary string
	logger *infra.Logger
}

// NewFFmpegComposer builds a composer using the given ffmpeg binary path.
func NewFFmpegComposer(binary string, logger *infra.Logger) *FFmpegComposer {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegComposer{binary: binary, logger: logger}
}

// durationRegexp matches the Duration line in ffmpeg's stderr banner.
var durationRegexp = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+\.\d+)`)

// Compose runs the full pipeline: normalize clips to vertical, loop them to
// the narration's length, merge the audio, and burn word captions.
func (c *FFmpegComposer) Compose(ctx context.Context, req Request) (string, error) {
	if len(req.ClipPaths) == 0 {
		return "", fmt.Errorf("%w: no clips to compose", domain.ErrComposition)
	}
	if req.AudioPath == "" {
		return "", fmt.Errorf("%w: no narration audio", domain.ErrComposition)
	}

	audioDuration := c.probeDuration(ctx, req.AudioPath)
	c.logger.Debug().Float64("audio_duration", audioDuration).Msg("probed narration length")

	scaled, err := c.normalizeClips(ctx, req.ClipPaths, req.WorkDir)
	if err != nil {
		return "", err
	}

	looped := filepath.Join(req.WorkDir, "looped.mp4")
	if err := c.concatToDuration(ctx, scaled, looped, audioDuration, req.WorkDir); err != nil {
		return "", err
	}

	merged := filepath.Join(req.WorkDir, "merged.mp4")
	if err := c.mergeAudio(ctx, looped, req.AudioPath, merged); err != nil {
		return "", err
	}

	final := req.OutputPath
	if strings.TrimSpace(req.Script) != "" {
		srtPath := filepath.Join(req.WorkDir, "captions.srt")
		if err := WriteSRT(srtPath, req.Script, audioDuration); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrComposition, err)
		}
		if err := c.burnSubtitles(ctx, merged, srtPath, final); err != nil {
			return "", err
		}
	} else {
		if err := os.Rename(merged, final); err != nil {
			return "", fmt.Errorf("%w: move output: %v", domain.ErrComposition, err)
		}
	}
	return final, nil
}

// probeDuration reads a media file's duration from ffmpeg's banner output.
// Falls back to 10 seconds when it cannot be determined.
func (c *FFmpegComposer) probeDuration(ctx context.Context, path string) float64 {
	cmd := exec.CommandContext(ctx, c.binary, "-i", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run() // ffmpeg exits nonzero without an output file

	m := durationRegexp.FindStringSubmatch(stderr.String())
	if m == nil {
		c.logger.Warn().Str("path", path).Msg("could not probe duration, assuming 10s")
		return 10.0
	}
	hours, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)
	d := hours*3600 + minutes*60 + seconds
	if d <= 0 {
		return 10.0
	}
	return d
}

// normalizeClips re-encodes each clip to the vertical output frame.
func (c *FFmpegComposer) normalizeClips(ctx context.Context, clips []string, workDir string) ([]string, error) {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		outputWidth, outputHeight, outputWidth, outputHeight)

	scaled := make([]string, 0, len(clips))
	for i, clip := range clips {
		out := filepath.Join(workDir, fmt.Sprintf("scaled_%02d.mp4", i+1))
		args := []string{
			"-y", "-i", clip,
			"-vf", filter,
			"-c:v", "libx264", "-preset", "ultrafast", "-crf", "28",
			"-an",
			out,
		}
		if err := c.run(ctx, args); err != nil {
			c.logger.Warn().Str("clip", clip).Err(err).Msg("clip normalization failed, skipping")
			continue
		}
		scaled = append(scaled, out)
	}
	if len(scaled) == 0 {
		return nil, fmt.Errorf("%w: no clips survived normalization", domain.ErrComposition)
	}
	return scaled, nil
}

// concatToDuration loops the clip sequence until it covers the narration and
// trims to the exact duration.
func (c *FFmpegComposer) concatToDuration(ctx context.Context, clips []string, out string, duration float64, workDir string) error {
	clipDuration := 0.0
	for _, clip := range clips {
		clipDuration += c.probeDuration(ctx, clip)
	}
	repeats := 1
	if clipDuration > 0 {
		repeats = int(duration/clipDuration) + 1
	}

	var list strings.Builder
	for r := 0; r < repeats; r++ {
		for _, clip := range clips {
			fmt.Fprintf(&list, "file '%s'\n", clip)
		}
	}
	listPath := filepath.Join(workDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("%w: write concat list: %v", domain.ErrComposition, err)
	}

	args := []string{
		"-y", "-f", "concat", "-safe", "0", "-i", listPath,
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-c", "copy",
		out,
	}
	return c.run(ctx, args)
}

// mergeAudio replaces the video's audio track with the narration.
func (c *FFmpegComposer) mergeAudio(ctx context.Context, video, audio, out string) error {
	args := []string{
		"-y", "-i", video, "-i", audio,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy", "-c:a", "aac", "-b:a", "128k",
		"-shortest",
		out,
	}
	return c.run(ctx, args)
}

// burnSubtitles renders the caption file into the video frames.
func (c *FFmpegComposer) burnSubtitles(ctx context.Context, video, srt, out string) error {
	style := fmt.Sprintf(
		"FontSize=%d,PrimaryColour=&HFFFFFF&,OutlineColour=&H000000&,Outline=2,Alignment=2,MarginV=60",
		captionSize)
	args := []string{
		"-y", "-i", video,
		"-vf", fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(srt), style),
		"-c:v", "libx264", "-preset", "ultrafast", "-crf", "28",
		"-c:a", "copy",
		out,
	}
	return c.run(ctx, args)
}

// run executes one ffmpeg invocation, surfacing its stderr tail on failure.
func (c *FFmpegComposer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	c.logger.Debug().Strs("args", args).Msg("running ffmpeg")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: ffmpeg: %v: %s", domain.ErrComposition, err, stderrTail(stderr.String()))
	}
	return nil
}

// escapeFilterPath quotes characters that ffmpeg's filter syntax treats
// specially in file paths.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, ":", `\:`)
	return path
}

// stderrTail keeps the last few lines of ffmpeg output for error messages.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}

var _ Composer = (*FFmpegComposer)(nil)

// ErrNoFFmpeg reports a missing binary at startup.
var ErrNoFFmpeg = errors.New("compose: ffmpeg binary not found")

// CheckBinary verifies the ffmpeg binary is resolvable.
func CheckBinary(binary string) error {
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%w: %v", ErrNoFFmpeg, err)
	}
	return nil
}
