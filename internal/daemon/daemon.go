package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"firvoice/internal/bus"
	"firvoice/internal/config"
	"firvoice/internal/firclient"
	"firvoice/internal/interview"
	"firvoice/internal/language"
	"firvoice/internal/notify"
	"firvoice/internal/playback"
)

// Backend is the slice of the FIR backend API the daemon needs directly.
type Backend interface {
	UploadStatement(ctx context.Context, statement string, lang language.Language) (*firclient.Report, error)
}

// Deps wires the daemon's collaborators. All fields are required except
// ReportsDir, which defaults next to the cache socket.
type Deps struct {
	Config      *config.Config
	Backend     Backend
	Adapter     interview.Transcriber
	Player      *playback.Player
	Notifier    notify.Notifier
	NewRecorder interview.RecorderFactory
	ReportsDir  string
}

// Daemon drives one interview at a time over the control socket.
type Daemon struct {
	deps Deps

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	session    *interview.Session
	walker     *interview.Walker
	finalizing bool
	lastReport *firclient.Report
	reportPath string
}

func New(deps Deps) *Daemon {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully", sig)
		d.cancel()
	}()

	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.Handle(c)
	}
}

// Handle serves one control connection: a single command line in, a single
// reply line out.
func (d *Daemon) Handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "language":
		d.cmdLanguage(c, args)
	case "welcome":
		d.cmdWelcome(c)
	case "prompt", "replay":
		d.cmdPrompt(c, args)
	case "record":
		d.cmdRecord(c, args)
	case "stop":
		d.cmdStop(c)
	case "discard":
		d.cmdDiscard(c, args)
	case "complete":
		d.cmdComplete(c)
	case "status":
		d.cmdStatus(c)
	case "reset":
		d.cmdReset(c)
	case "quit":
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %s", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

func (d *Daemon) cmdLanguage(c net.Conn, args []string) {
	if len(args) != 1 {
		fmt.Fprint(c, "ERR usage: language <english|hindi|punjabi>\n")
		return
	}
	lang, err := language.Parse(args[0])
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}

	session, err := interview.NewSession(lang, interview.Options{
		NewRecorder:       d.deps.NewRecorder,
		MinRecordingBytes: d.deps.Config.Interview.MinRecordingBytes,
		Capture:           d.deps.Config.ToCaptureConfig(),
	})
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}

	d.mu.Lock()
	if d.session != nil {
		d.session.Reset()
	}
	d.session = session
	d.walker = interview.NewWalker(session, interview.NewTokenClassifier(), d.deps.Adapter)
	d.lastReport = nil
	d.reportPath = ""
	d.mu.Unlock()

	d.deps.Player.Reset()
	fmt.Fprintf(c, "OK language=%s questions=%d\n", lang, len(session.Questions()))
}

func (d *Daemon) cmdWelcome(c net.Conn) {
	session := d.currentSession()
	if session == nil {
		fmt.Fprint(c, "ERR no session: run language first\n")
		return
	}
	if !d.deps.Config.Playback.Enabled {
		fmt.Fprint(c, "OK playback disabled\n")
		return
	}

	go func() {
		if err := d.deps.Player.PlayWelcome(d.ctx, session.Language()); err != nil {
			log.Printf("Welcome playback failed: %v", err)
		}
	}()
	fmt.Fprint(c, "OK welcome\n")
}

func (d *Daemon) cmdPrompt(c net.Conn, args []string) {
	session := d.currentSession()
	if session == nil {
		fmt.Fprint(c, "ERR no session: run language first\n")
		return
	}
	index, err := parseIndex(args)
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	questions := session.Questions()
	if index < 0 || index >= len(questions) {
		fmt.Fprintf(c, "ERR question index %d out of range\n", index)
		return
	}
	if !d.deps.Config.Playback.Enabled {
		fmt.Fprint(c, "OK playback disabled\n")
		return
	}

	go func() {
		if err := d.deps.Player.PromptQuestion(d.ctx, questions[index].Text, session.Language()); err != nil {
			log.Printf("Prompt playback failed: %v", err)
		}
	}()
	fmt.Fprintf(c, "OK prompt=%d\n", index)
}

func (d *Daemon) cmdRecord(c net.Conn, args []string) {
	session := d.currentSession()
	if session == nil {
		fmt.Fprint(c, "ERR no session: run language first\n")
		return
	}
	index, err := parseIndex(args)
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}

	d.deps.Player.Stop()
	if err := session.StartCapture(d.ctx, index); err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	go d.deps.Notifier.RecordingChanged(index, true)
	fmt.Fprintf(c, "OK recording=%d\n", index)
}

func (d *Daemon) cmdStop(c net.Conn) {
	session := d.currentSession()
	if session == nil {
		fmt.Fprint(c, "ERR no session: run language first\n")
		return
	}
	index := session.ActiveIndex()
	if index < 0 {
		fmt.Fprint(c, "ERR nothing is recording\n")
		return
	}

	rec, err := session.StopCapture(index)
	go d.deps.Notifier.RecordingChanged(index, false)
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}

	// Branching questions decide their follow-up path as soon as the
	// answer lands.
	d.mu.Lock()
	walker := d.walker
	d.mu.Unlock()
	inserted := 0
	if walker != nil {
		inserted, err = walker.Decide(d.ctx, index)
		if err != nil {
			log.Printf("Branch decision for question %d: %v", index+1, err)
		}
	}

	fmt.Fprintf(c, "OK captured=%d bytes=%d duration=%ds added=%d\n",
		index, rec.SizeBytes, rec.DurationSeconds, inserted)
}

func (d *Daemon) cmdDiscard(c net.Conn, args []string) {
	session := d.currentSession()
	if session == nil {
		fmt.Fprint(c, "ERR no session: run language first\n")
		return
	}
	index, err := parseIndex(args)
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	session.DiscardRecording(index)
	fmt.Fprintf(c, "OK discarded=%d\n", index)
}

func (d *Daemon) cmdComplete(c net.Conn) {
	session := d.currentSession()
	if session == nil {
		fmt.Fprint(c, "ERR no session: run language first\n")
		return
	}

	d.mu.Lock()
	if d.finalizing {
		d.mu.Unlock()
		fmt.Fprint(c, "ERR finalization already in progress\n")
		return
	}
	d.finalizing = true
	d.mu.Unlock()

	consumer := &uploadConsumer{daemon: d}
	finalizer := interview.NewFinalizer(d.deps.Adapter, consumer, d.deps.Config.ToFinalizeConfig())

	outcome, err := finalizer.Run(d.ctx, session)

	// Clear the flag before replying so a status command issued right after
	// the reply sees the settled state.
	d.mu.Lock()
	d.finalizing = false
	path := d.reportPath
	d.mu.Unlock()

	if err != nil {
		go d.deps.Notifier.Error(fmt.Sprintf("Report failed: %v", err))
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}

	failed := 0
	for _, result := range outcome.Results {
		if !result.Succeeded {
			failed++
		}
	}

	go d.deps.Notifier.ReportReady()
	fmt.Fprintf(c, "OK report=%s answers=%d failed=%d\n", path, len(outcome.Results), failed)
}

func (d *Daemon) cmdStatus(c net.Conn) {
	d.mu.Lock()
	session := d.session
	finalizing := d.finalizing
	path := d.reportPath
	d.mu.Unlock()

	if session == nil {
		fmt.Fprint(c, "STATUS state=no-session\n")
		return
	}

	state := "interviewing"
	if finalizing {
		state = "finalizing"
	} else if _, done := session.FinalStatement(); done {
		state = "done"
	}

	total := len(session.Questions())
	answered := total - len(session.MissingIndexes())
	fmt.Fprintf(c, "STATUS state=%s language=%s answered=%d/%d active=%d report=%s\n",
		state, session.Language(), answered, total, session.ActiveIndex(), path)
}

func (d *Daemon) cmdReset(c net.Conn) {
	d.mu.Lock()
	session := d.session
	d.lastReport = nil
	d.reportPath = ""
	d.mu.Unlock()

	if session != nil {
		session.Reset()
	}
	d.deps.Player.Reset()
	fmt.Fprint(c, "OK reset\n")
}

func (d *Daemon) currentSession() *interview.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// LastReport returns the report from the most recent finalization.
func (d *Daemon) LastReport() *firclient.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastReport
}

func parseIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one question index")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid question index %q", args[0])
	}
	return index, nil
}

// uploadConsumer sends the finalized statement to the backend and persists
// the resulting report.
type uploadConsumer struct {
	daemon *Daemon
}

func (u *uploadConsumer) Submit(ctx context.Context, statement string, lang language.Language) error {
	report, err := u.daemon.deps.Backend.UploadStatement(ctx, statement, lang)
	if err != nil {
		return err
	}

	path, err := u.daemon.writeReport(report)
	if err != nil {
		log.Printf("Failed to persist report: %v", err)
	}

	u.daemon.mu.Lock()
	u.daemon.lastReport = report
	u.daemon.reportPath = path
	u.daemon.mu.Unlock()
	return nil
}

func (d *Daemon) reportsDir() (string, error) {
	if d.deps.ReportsDir != "" {
		return d.deps.ReportsDir, nil
	}
	if d.deps.Config.Reports.Dir != "" {
		return d.deps.Config.Reports.Dir, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "firvoice", "reports"), nil
}

// writeReport saves the draft text for the officer to review or print.
func (d *Daemon) writeReport(report *firclient.Report) (string, error) {
	dir, err := d.reportsDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("report-%s.txt", uuid.NewString()))
	if err := os.WriteFile(path, []byte(report.FIRDraft), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
