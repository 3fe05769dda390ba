package daemon

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"firvoice/internal/capture"
	"firvoice/internal/firclient"
	"firvoice/internal/language"
	"firvoice/internal/playback"
	"firvoice/internal/testutil"
)

func fixedText(text string) *testutil.MockTranscriber {
	return &testutil.MockTranscriber{
		TranscribeFunc: func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
			return text, nil
		},
	}
}

func testDaemon(t *testing.T, adapter *testutil.MockTranscriber, backend *testutil.MockBackend) *Daemon {
	t.Helper()

	if backend.Report == nil {
		backend.Report = &firclient.Report{
			Status:   "success",
			FIRDraft: "FIRST INFORMATION REPORT",
			Language: "english",
		}
	}

	return New(Deps{
		Config:  testutil.TestConfig(),
		Backend: backend,
		Adapter: adapter,
		Player:  playback.NewPlayer(&testutil.MockSynthesizer{}, &testutil.MockSink{}),
		NewRecorder: func() capture.Recorder {
			return &testutil.MockRecorder{Data: make([]byte, 4000)}
		},
		ReportsDir: t.TempDir(),
	})
}

func send(t *testing.T, d *Daemon, cmd string) string {
	t.Helper()
	server, client := net.Pipe()
	defer client.Close()

	go d.Handle(server)

	if _, err := fmt.Fprintf(client, "%s\n", cmd); err != nil {
		t.Fatalf("write command %q: %v", cmd, err)
	}
	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	resp, err := bufio.NewReader(client).ReadString('\n')
	if err != nil {
		t.Fatalf("read response for %q: %v", cmd, err)
	}
	return strings.TrimRight(resp, "\n")
}

func TestCommandsRequireSession(t *testing.T) {
	d := testDaemon(t, fixedText("answer"), &testutil.MockBackend{})

	for _, cmd := range []string{"record 0", "stop", "prompt 0", "complete", "welcome"} {
		resp := send(t, d, cmd)
		if !strings.HasPrefix(resp, "ERR no session") {
			t.Errorf("%q response = %q, want ERR no session", cmd, resp)
		}
	}
}

func TestLanguageCommand(t *testing.T) {
	d := testDaemon(t, fixedText("answer"), &testutil.MockBackend{})

	resp := send(t, d, "language hindi")
	if resp != "OK language=hindi questions=5" {
		t.Errorf("response = %q", resp)
	}

	resp = send(t, d, "language klingon")
	if !strings.HasPrefix(resp, "ERR") {
		t.Errorf("response = %q, want ERR", resp)
	}
}

func TestRecordStopCycle(t *testing.T) {
	d := testDaemon(t, fixedText("my answer"), &testutil.MockBackend{})
	send(t, d, "language english")

	resp := send(t, d, "record 0")
	if resp != "OK recording=0" {
		t.Fatalf("record response = %q", resp)
	}

	resp = send(t, d, "status")
	if !strings.Contains(resp, "active=0") {
		t.Errorf("status during recording = %q", resp)
	}

	resp = send(t, d, "stop")
	if !strings.HasPrefix(resp, "OK captured=0 bytes=4000") {
		t.Errorf("stop response = %q", resp)
	}

	resp = send(t, d, "stop")
	if !strings.HasPrefix(resp, "ERR nothing is recording") {
		t.Errorf("second stop response = %q", resp)
	}
}

func TestStopOnBranchingQuestionSplices(t *testing.T) {
	d := testDaemon(t, fixedText("Yes, I saw them"), &testutil.MockBackend{})
	send(t, d, "language english")

	for i := 0; i < 4; i++ {
		send(t, d, fmt.Sprintf("record %d", i))
		send(t, d, "stop")
	}
	send(t, d, "record 4")
	resp := send(t, d, "stop")
	if !strings.HasSuffix(resp, "added=3") {
		t.Errorf("stop on branching question = %q, want added=3 suffix", resp)
	}

	resp = send(t, d, "status")
	if !strings.Contains(resp, "answered=5/8") {
		t.Errorf("status after splice = %q, want answered=5/8", resp)
	}
}

func TestCompleteFlow(t *testing.T) {
	backend := &testutil.MockBackend{}
	d := testDaemon(t, fixedText("No, nothing more"), backend)
	send(t, d, "language english")

	for i := 0; i < 5; i++ {
		send(t, d, fmt.Sprintf("record %d", i))
		send(t, d, "stop")
	}

	resp := send(t, d, "complete")
	if !strings.HasPrefix(resp, "OK report=") {
		t.Fatalf("complete response = %q", resp)
	}
	if !strings.HasSuffix(resp, "answers=5 failed=0") {
		t.Errorf("complete response = %q, want answers=5 failed=0", resp)
	}

	statements := backend.Statements()
	if len(statements) != 1 {
		t.Fatalf("backend received %d statements, want 1", len(statements))
	}
	statement := statements[0]
	if !strings.HasPrefix(statement, "Q: Can you tell me your full name, please?\nA: No, nothing more") {
		t.Errorf("statement = %q", statement)
	}
	if strings.Count(statement, "\n\n") != 4 {
		t.Errorf("statement should have 5 blocks: %q", statement)
	}

	// Report file written with the draft.
	path := strings.TrimPrefix(strings.Fields(resp)[1], "report=")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report file: %v", err)
	}
	if string(data) != "FIRST INFORMATION REPORT" {
		t.Errorf("report file = %q", data)
	}

	if report := d.LastReport(); report == nil || report.Status != "success" {
		t.Errorf("LastReport = %+v", report)
	}

	resp = send(t, d, "status")
	if !strings.Contains(resp, "state=done") {
		t.Errorf("status after complete = %q", resp)
	}
}

func TestCompleteIncomplete(t *testing.T) {
	adapter := fixedText("answer")
	d := testDaemon(t, adapter, &testutil.MockBackend{})
	send(t, d, "language english")

	send(t, d, "record 0")
	send(t, d, "stop")

	resp := send(t, d, "complete")
	if !strings.HasPrefix(resp, "ERR session incomplete") {
		t.Errorf("complete response = %q", resp)
	}
	if adapter.Calls() != 0 {
		t.Errorf("adapter called %d times for incomplete session, want 0", adapter.Calls())
	}
}

func TestResetClearsSession(t *testing.T) {
	d := testDaemon(t, fixedText("answer"), &testutil.MockBackend{})
	send(t, d, "language english")
	send(t, d, "record 0")
	send(t, d, "stop")

	resp := send(t, d, "reset")
	if resp != "OK reset" {
		t.Fatalf("reset response = %q", resp)
	}

	resp = send(t, d, "status")
	if !strings.Contains(resp, "answered=0/5") {
		t.Errorf("status after reset = %q", resp)
	}
}

func TestDiscardAllowsRetake(t *testing.T) {
	d := testDaemon(t, fixedText("answer"), &testutil.MockBackend{})
	send(t, d, "language english")
	send(t, d, "record 2")
	send(t, d, "stop")

	resp := send(t, d, "discard 2")
	if resp != "OK discarded=2" {
		t.Fatalf("discard response = %q", resp)
	}

	resp = send(t, d, "status")
	if !strings.Contains(resp, "answered=0/5") {
		t.Errorf("status after discard = %q", resp)
	}
}

func TestUnknownCommand(t *testing.T) {
	d := testDaemon(t, fixedText("answer"), &testutil.MockBackend{})
	resp := send(t, d, "frobnicate")
	if !strings.HasPrefix(resp, "ERR unknown") {
		t.Errorf("response = %q", resp)
	}
}
