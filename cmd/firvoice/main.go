package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"firvoice/internal/bus"
	"firvoice/internal/capture"
	"firvoice/internal/config"
	"firvoice/internal/daemon"
	"firvoice/internal/deps"
	"firvoice/internal/firclient"
	"firvoice/internal/language"
	"firvoice/internal/notify"
	"firvoice/internal/playback"
	"firvoice/internal/transcriber"
	"firvoice/internal/tui"
)

func main() {
	// Optional .env for OPENAI_API_KEY and friends.
	_ = godotenv.Load()
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "firvoice",
	Short: "Voice-guided incident report capture",
	Long: `firvoice runs guided voice interviews for first information reports:
it speaks the questions, records the answers, transcribes them and sends
the assembled statement to the FIR backend for analysis.`,
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		languageCmd(),
		welcomeCmd(),
		promptCmd(),
		recordCmd(),
		stopRecordingCmd(),
		discardCmd(),
		completeCmd(),
		statusCmd(),
		resetCmd(),
		quitCmd(),
		configureCmd(),
		uploadCmd(),
		updateCmd(),
		doctorCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the interview daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := manager.StartWatching(cmd.Context()); err != nil {
				log.Printf("Config watching disabled: %v", err)
			}
			defer manager.Stop()

			cfg := manager.GetConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			d, err := buildDaemon(cfg)
			if err != nil {
				return err
			}
			return d.Run()
		},
	}
}

func buildDaemon(cfg *config.Config) (*daemon.Daemon, error) {
	client := firclient.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

	adapter, err := transcriber.NewAdapter(cfg.ToTranscriberOptions(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	captureConfig := cfg.ToCaptureConfig()
	return daemon.New(daemon.Deps{
		Config:   cfg,
		Backend:  client,
		Adapter:  adapter,
		Player:   playback.NewPlayer(client, playback.NewFFplaySink()),
		Notifier: notify.New(cfg.Notifications.Enabled, cfg.Notifications.Type),
		NewRecorder: func() capture.Recorder {
			return capture.NewRecorder(captureConfig)
		},
	}), nil
}

// sendCmd builds a subcommand that forwards one command line to the daemon.
func sendCmd(use, short, command string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			full := command
			if len(args) > 0 {
				full = command + " " + strings.Join(args, " ")
			}
			resp, err := bus.SendCommand(full)
			if err != nil {
				return fmt.Errorf("failed to reach daemon (is it running?): %w", err)
			}
			fmt.Println(resp)
			return nil
		},
	}
}

func languageCmd() *cobra.Command {
	cmd := sendCmd("language <english|hindi|punjabi>", "Start a new interview in the given language", "language")
	cmd.Args = cobra.ExactArgs(1)
	return cmd
}

func welcomeCmd() *cobra.Command {
	return sendCmd("welcome", "Play the welcome message", "welcome")
}

func promptCmd() *cobra.Command {
	cmd := sendCmd("prompt <question>", "Speak a question aloud", "prompt")
	cmd.Args = cobra.ExactArgs(1)
	return cmd
}

func recordCmd() *cobra.Command {
	cmd := sendCmd("record <question>", "Start recording an answer", "record")
	cmd.Args = cobra.ExactArgs(1)
	return cmd
}

func stopRecordingCmd() *cobra.Command {
	return sendCmd("stop", "Stop the active recording", "stop")
}

func discardCmd() *cobra.Command {
	cmd := sendCmd("discard <question>", "Discard a recorded answer for re-take", "discard")
	cmd.Args = cobra.ExactArgs(1)
	return cmd
}

func completeCmd() *cobra.Command {
	return sendCmd("complete", "Transcribe all answers and generate the report", "complete")
}

func statusCmd() *cobra.Command {
	return sendCmd("status", "Show interview status", "status")
}

func resetCmd() *cobra.Command {
	return sendCmd("reset", "Discard the interview and start over", "reset")
}

func quitCmd() *cobra.Command {
	return sendCmd("quit", "Stop the daemon", "quit")
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			result, err := tui.Run(cfg)
			if err != nil {
				return err
			}
			if result.Cancelled {
				fmt.Println("Configuration unchanged.")
				return nil
			}

			if err := config.Save(result.Config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			path, _ := config.GetConfigPath()
			fmt.Printf("Configuration saved to %s\n", path)
			return nil
		},
	}
}

func uploadCmd() *cobra.Command {
	var langName string

	cmd := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Upload a standalone recording for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := language.Parse(langName)
			if err != nil {
				return err
			}

			path := args[0]
			mimeType, err := inspectAudioFile(path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			client := firclient.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

			report, err := client.UploadAudio(cmd.Context(), data, mimeType, lang)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().StringVar(&langName, "language", "english", "recording language (english, hindi, punjabi)")
	return cmd
}

// inspectAudioFile checks the file is audio we can hand to the backend and
// returns its mime type. WAV files get a real header check.
func inspectAudioFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		decoder := wav.NewDecoder(f)
		decoder.ReadInfo()
		if !decoder.IsValidFile() {
			return "", fmt.Errorf("%s is not a valid WAV file", path)
		}
		log.Printf("Upload: %s (%d Hz, %d channels, %d bit)",
			path, decoder.SampleRate, decoder.NumChans, decoder.BitDepth)
		return "audio/wav", nil
	case ".mp3":
		return "audio/mpeg", nil
	case ".webm":
		return "audio/webm", nil
	case ".ogg":
		return "audio/ogg", nil
	default:
		return "", fmt.Errorf("unsupported audio format %q (use wav, mp3, webm or ogg)", filepath.Ext(path))
	}
}

func updateCmd() *cobra.Command {
	var update firclient.UpdateRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Regenerate the report draft with corrected fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if update.Language == "" {
				update.Language = cfg.Interview.Language
			}

			client := firclient.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
			draft, err := client.UpdateReport(cmd.Context(), update)
			if err != nil {
				return err
			}
			fmt.Println(draft)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&update.VictimName, "victim-name", "", "complainant's full name")
	flags.StringVar(&update.FatherOrHusbandName, "father-or-husband-name", "", "father's or husband's name")
	flags.StringVar(&update.DOB, "dob", "", "date of birth")
	flags.StringVar(&update.Nationality, "nationality", "", "nationality")
	flags.StringVar(&update.Occupation, "occupation", "", "occupation")
	flags.StringVar(&update.Address, "address", "", "address")
	flags.StringVar(&update.IncidentDate, "incident-date", "", "date of the incident")
	flags.StringVar(&update.IncidentTime, "incident-time", "", "time of the incident")
	flags.StringVar(&update.IncidentLocation, "incident-location", "", "location of the incident")
	flags.StringVar(&update.ComplaintDetails, "complaint-details", "", "incident description")
	flags.StringVar(&update.AccusedDetails, "accused-details", "", "accused description")
	flags.StringVar(&update.StolenProperties, "stolen-properties", "", "stolen properties")
	flags.StringVar(&update.TotalValue, "total-value", "", "total value of stolen properties")
	flags.StringVar(&update.InquestReport, "inquest-report", "", "inquest report reference")
	flags.StringVar(&update.DelayReason, "delay-reason", "", "reason for reporting delay")
	flags.StringVar(&update.Language, "language", "", "report language (defaults to configured language)")

	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tool dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			printStatus := func(name string, status deps.Status, required bool) {
				if status.Installed {
					if status.Version != "" {
						fmt.Printf("  ok       %-12s %s (%s)\n", name, status.Path, status.Version)
					} else {
						fmt.Printf("  ok       %-12s %s\n", name, status.Path)
					}
					return
				}
				if required {
					fmt.Printf("  MISSING  %-12s required for recording/playback\n", name)
				} else {
					fmt.Printf("  missing  %-12s optional\n", name)
				}
			}

			fmt.Println("External dependencies:")
			printStatus("pw-record", deps.CheckPwRecord(), true)
			printStatus("ffplay", deps.CheckFFplay(), true)
			printStatus("notify-send", deps.CheckNotifySend(), false)

			if err := capture.CheckPipeWireAvailable(context.Background()); err != nil {
				fmt.Printf("\nPipeWire: %v\n", err)
			} else {
				fmt.Println("\nPipeWire: running")
			}
			return nil
		},
	}
}

func printReport(report *firclient.Report) {
	fmt.Printf("Status:   %s\n", report.Status)
	fmt.Printf("Language: %s\n", report.Language)
	if report.PersonalInfo.VictimName != "" {
		fmt.Printf("Victim:   %s\n", report.PersonalInfo.VictimName)
	}
	if report.LegalSections != "" {
		fmt.Printf("\nLegal sections:\n%s\n", report.LegalSections)
	}
	fmt.Printf("\n%s\n", report.FIRDraft)
}
