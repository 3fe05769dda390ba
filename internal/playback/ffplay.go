package playback

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// FFplaySink plays audio clips by piping them into ffplay.
type FFplaySink struct{}

func NewFFplaySink() *FFplaySink { return &FFplaySink{} }

// Available reports whether ffplay can be found on PATH.
func (s *FFplaySink) Available() error {
	if _, err := exec.LookPath("ffplay"); err != nil {
		return fmt.Errorf("ffplay not found: %w (install ffmpeg)", err)
	}
	return nil
}

func (s *FFplaySink) Play(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("no audio to play")
	}

	cmd := exec.CommandContext(ctx, "ffplay",
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-",
	)
	cmd.Stdin = bytes.NewReader(audio)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if stderr.Len() > 0 {
			return fmt.Errorf("ffplay: %w: %s", err, stderr.String())
		}
		return fmt.Errorf("ffplay: %w", err)
	}
	return nil
}
