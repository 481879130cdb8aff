package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/mattn/go-shellwords"
)

// FFmpeg converts browser recordings (webm/ogg) into 16kHz mono wav by
// running an external ffmpeg process.
type FFmpeg struct {
	cmd     []string
	timeout time.Duration
}

// NewFFmpeg parses command, e.g. "ffmpeg -loglevel error". An empty command
// means plain "ffmpeg" from PATH.
func NewFFmpeg(command string, timeout time.Duration) (*FFmpeg, error) {
	if command == "" {
		command = "ffmpeg"
	}
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse transcode command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("transcode command is empty")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &FFmpeg{cmd: args, timeout: timeout}, nil
}

func (f *FFmpeg) Transcode(ctx context.Context, in []byte) ([]byte, error) {
	src, err := os.CreateTemp("", "voice_in_*.webm")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(src.Name())
	defer src.Close()
	if _, err := src.Write(in); err != nil {
		return nil, fmt.Errorf("write temp audio: %w", err)
	}

	dst, err := os.CreateTemp("", "voice_out_*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	dst.Close()
	defer os.Remove(dst.Name())

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := append([]string{}, f.cmd[1:]...)
	args = append(args, "-y", "-i", src.Name(), "-ac", "1", "-ar", "16000", dst.Name())

	command := exec.CommandContext(ctx, f.cmd[0], args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, stderr.String())
	}

	out, err := os.ReadFile(dst.Name())
	if err != nil {
		return nil, fmt.Errorf("read transcoded audio: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no audio")
	}
	return out, nil
}
