package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Chunk is one time slice of captured audio. Slices are delivered while the
// capture is still in flight so a failure mid-capture preserves partial data.
type Chunk struct {
	Data      []byte
	Timestamp time.Time
}

// Recorder is the audio input capability the environment provides.
type Recorder interface {
	Start(ctx context.Context) (<-chan Chunk, <-chan error, error)
	Stop() error
	IsRecording() bool
}

// DeviceAccessError reports that the audio input device could not be opened.
type DeviceAccessError struct {
	Err error
}

func (e *DeviceAccessError) Error() string {
	if e == nil || e.Err == nil {
		return "audio device access failed"
	}
	return fmt.Sprintf("audio device access failed: %v", e.Err)
}

func (e *DeviceAccessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	SliceDuration     time.Duration
	Device            string
	ChannelBufferSize int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16le",
		SliceDuration:     time.Second,
		Device:            "",
		ChannelBufferSize: 20,
	}
}

// SliceBytes returns the raw PCM size of one time slice.
func (c Config) SliceBytes() int {
	bytesPerSecond := c.SampleRate * c.Channels * 2 // s16le
	return int(float64(bytesPerSecond) * c.SliceDuration.Seconds())
}

// PwRecorder captures microphone audio by running pw-record and reading
// fixed-size slices from its stdout.
type PwRecorder struct {
	config    Config
	recording atomic.Bool

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	wg sync.WaitGroup
}

func NewRecorder(config Config) *PwRecorder {
	return &PwRecorder{config: config}
}

func NewDefaultRecorder() *PwRecorder { return NewRecorder(DefaultConfig()) }

func (r *PwRecorder) IsRecording() bool {
	return r.recording.Load()
}

func (r *PwRecorder) Start(ctx context.Context) (<-chan Chunk, <-chan error, error) {
	if r.recording.Load() {
		return nil, nil, fmt.Errorf("already recording")
	}

	if err := r.config.validate(); err != nil {
		return nil, nil, err
	}

	if err := CheckPipeWireAvailable(ctx); err != nil {
		return nil, nil, &DeviceAccessError{Err: err}
	}

	captureCtx, cancel := context.WithCancel(ctx)

	chunkCh := make(chan Chunk, r.config.ChannelBufferSize)
	errCh := make(chan error, 1)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(captureCtx, chunkCh, errCh)

	return chunkCh, errCh, nil
}

func (r *PwRecorder) Stop() error {
	if !r.recording.Load() {
		return nil
	}

	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	return nil
}

func (r *PwRecorder) Wait() {
	r.wg.Wait()
}

func (r *PwRecorder) captureLoop(ctx context.Context, chunkCh chan<- Chunk, errCh chan<- error) {
	defer func() {
		close(chunkCh)
		close(errCh)
		r.recording.Store(false)

		// Ensure any child process is reaped.
		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		r.cancel = nil
		r.mu.Unlock()

		r.wg.Done()
	}()

	args := r.buildPwRecordArgs()
	cmd := exec.CommandContext(ctx, "pw-record", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stdout pipe: %w", err))
		r.requestCancel()
		return
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stderr pipe: %w", err))
		r.requestCancel()
		return
	}

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	if err := cmd.Start(); err != nil {
		r.emitErr(errCh, &DeviceAccessError{Err: fmt.Errorf("start pw-record: %w", err)})
		r.requestCancel()
		return
	}

	// Log stderr lines to aid diagnostics.
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("capture stderr: %s", scanner.Text())
		}
	}()

	buffer := make([]byte, r.config.SliceBytes())
	var droppedCount int
	lastDropLog := time.Now()

	for {
		n, readErr := io.ReadFull(stdout, buffer)
		if n > 0 {
			chunkData := make([]byte, n)
			copy(chunkData, buffer[:n])

			chunk := Chunk{Data: chunkData, Timestamp: time.Now()}

			select {
			case chunkCh <- chunk:
			case <-ctx.Done():
				return
			default:
				droppedCount++
				if time.Since(lastDropLog) > time.Second {
					log.Printf("capture: dropped %d slices due to backpressure", droppedCount)
					lastDropLog = time.Now()
					droppedCount = 0
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				return
			}
			r.emitErr(errCh, fmt.Errorf("read audio: %w", readErr))
			r.requestCancel()
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (r *PwRecorder) requestCancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *PwRecorder) emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
		// Best-effort; avoid blocking
	}
	log.Printf("capture error: %v", err)
}

func (r *PwRecorder) buildPwRecordArgs() []string {
	args := []string{
		"--format", r.config.Format,
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
		"-", // stdout
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	return args
}

func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(checkCtx, "pw-cli", "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", c.Channels)
	}
	if c.SliceDuration <= 0 {
		return fmt.Errorf("invalid SliceDuration: %v", c.SliceDuration)
	}
	if c.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", c.ChannelBufferSize)
	}
	if c.Format == "" {
		return fmt.Errorf("invalid Format: empty")
	}
	return nil
}
