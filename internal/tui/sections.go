package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"firvoice/internal/config"
	"firvoice/internal/language"
)

func editBackend(cfg *config.Config) error {
	backendURL := cfg.Backend.URL
	timeoutSecs := strconv.Itoa(int(cfg.Backend.Timeout / time.Second))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Address of the FIR analysis backend").
				Value(&backendURL).
				Validate(func(s string) error {
					parsed, err := url.Parse(s)
					if err != nil || parsed.Scheme == "" || parsed.Host == "" {
						return fmt.Errorf("must be an absolute http/https URL")
					}
					return nil
				}),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&timeoutSecs).
				Validate(validatePositiveInt),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Backend.URL = strings.TrimRight(backendURL, "/")
	secs, _ := strconv.Atoi(timeoutSecs)
	cfg.Backend.Timeout = time.Duration(secs) * time.Second
	return nil
}

func editInterview(cfg *config.Config) error {
	options := make([]huh.Option[string], 0, len(language.List()))
	for _, lang := range language.List() {
		name := string(lang)
		label := strings.ToUpper(name[:1]) + name[1:]
		options = append(options, huh.NewOption(label, name))
	}

	selectedLanguage := cfg.Interview.Language
	playbackEnabled := cfg.Playback.Enabled

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Interview Language").
				Description("Language for questions, prompts and transcription").
				Options(options...).
				Value(&selectedLanguage),
			huh.NewConfirm().
				Title("Spoken prompts").
				Description("Read questions aloud through the speakers").
				Value(&playbackEnabled),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Interview.Language = selectedLanguage
	cfg.Playback.Enabled = playbackEnabled
	return nil
}

func editTranscription(cfg *config.Config) error {
	provider := cfg.Transcription.Provider

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Provider").
				Description("Where recorded answers are transcribed").
				Options(
					huh.NewOption("FIR backend (server-side Whisper)", "backend"),
					huh.NewOption("OpenAI (direct Whisper API)", "openai"),
				).
				Value(&provider),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}
	cfg.Transcription.Provider = provider

	if provider == "openai" {
		apiKey := cfg.Providers["openai"].APIKey
		keyForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("OpenAI API Key").
					Description("Leave empty to use the OPENAI_API_KEY environment variable").
					EchoMode(huh.EchoModePassword).
					Value(&apiKey),
			),
		).WithTheme(getTheme())
		if err := keyForm.Run(); err != nil {
			return err
		}
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]config.ProviderConfig)
		}
		cfg.Providers["openai"] = config.ProviderConfig{APIKey: apiKey}
	}

	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifierType := cfg.Notifications.Type
	if notifierType == "" {
		notifierType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Notification type").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Log", "log"),
					huh.NewOption("None", "none"),
				).
				Value(&notifierType),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifierType
	return nil
}

func editAdvanced(cfg *config.Config) error {
	device := cfg.Recording.Device
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)
	minBytes := strconv.Itoa(cfg.Interview.MinRecordingBytes)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Recording device").
				Description("PipeWire target node (empty = default microphone)").
				Value(&device),
			huh.NewInput().
				Title("Sample rate (Hz)").
				Value(&sampleRate).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Minimum answer size (bytes)").
				Description("Captures below this size are rejected as empty").
				Value(&minBytes).
				Validate(validatePositiveInt),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.Device = device
	cfg.Recording.SampleRate, _ = strconv.Atoi(sampleRate)
	cfg.Interview.MinRecordingBytes, _ = strconv.Atoi(minBytes)
	return nil
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Printf("  Backend:       %s (timeout %v)\n", cfg.Backend.URL, cfg.Backend.Timeout)
	fmt.Printf("  Language:      %s\n", cfg.Interview.Language)
	fmt.Printf("  Prompts:       %v\n", cfg.Playback.Enabled)
	fmt.Printf("  Transcription: %s\n", cfg.Transcription.Provider)
	fmt.Printf("  Notifications: %s\n", formatNotificationsLabel(cfg))
	fmt.Println()

	confirmed := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}
