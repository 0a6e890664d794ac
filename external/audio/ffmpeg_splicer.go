package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pitchperfect/pitchperfect/internal/audio"
)

// FFmpegSplicer shells out to ffmpeg for cutting and concatenation.
type FFmpegSplicer struct {
	binaryPath string
}

func NewFFmpegSplicer(binaryPath string) *FFmpegSplicer {
	return &FFmpegSplicer{binaryPath: binaryPath}
}

func (s *FFmpegSplicer) Cut(ctx context.Context, srcPath string, startSeconds, durationSeconds float64, dstPath string) error {
	if durationSeconds <= 0 {
		return fmt.Errorf("cut duration must be positive, got %v", durationSeconds)
	}
	args := []string{
		"-y",
		"-i", srcPath,
		"-ss", formatSeconds(startSeconds),
		"-t", formatSeconds(durationSeconds),
		"-c", "copy",
		dstPath,
	}
	return s.run(ctx, args)
}

func (s *FFmpegSplicer) Concat(ctx context.Context, srcPaths []string, dstPath string) error {
	if len(srcPaths) == 0 {
		return fmt.Errorf("nothing to concatenate")
	}

	// ffmpeg's concat demuxer reads the input list from a file.
	listFile, err := os.CreateTemp(filepath.Dir(dstPath), "concat-*.txt")
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	defer func() {
		_ = os.Remove(listFile.Name())
	}()

	var list strings.Builder
	for _, p := range srcPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		list.WriteString("file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'\n")
	}
	if _, err := listFile.WriteString(list.String()); err != nil {
		_ = listFile.Close()
		return fmt.Errorf("write concat list: %w", err)
	}
	if err := listFile.Close(); err != nil {
		return fmt.Errorf("close concat list: %w", err)
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		dstPath,
	}
	return s.run(ctx, args)
}

func (s *FFmpegSplicer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, s.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("running ffmpeg", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, detail)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

var _ audio.Splicer = (*FFmpegSplicer)(nil)
