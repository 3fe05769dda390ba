package playback

import (
	"context"
	"fmt"
	"log"
	"sync"

	"firvoice/internal/language"
)

// Synthesizer turns prompt text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error)
}

// WelcomeSynthesizer is implemented by synthesizers that generate the welcome
// briefing through a dedicated engine rather than the question TTS path.
type WelcomeSynthesizer interface {
	SynthesizeWelcome(ctx context.Context, text string, lang language.Language) ([]byte, error)
}

// Sink plays a complete audio clip and returns when playback ends.
type Sink interface {
	Play(ctx context.Context, audio []byte) error
}

// Player speaks interview prompts through a Sink. Playback is serialized:
// starting a new prompt cancels whatever is currently playing. Synthesized
// audio is cached per prompt so replaying a question costs no extra
// synthesis call.
type Player struct {
	synth Synthesizer
	sink  Sink

	mu            sync.Mutex
	cache         map[string][]byte
	cancel        context.CancelFunc
	playID        uint64
	welcomeActive bool

	playMu sync.Mutex // serializes sink access
}

func NewPlayer(synth Synthesizer, sink Sink) *Player {
	return &Player{
		synth: synth,
		sink:  sink,
		cache: make(map[string][]byte),
	}
}

func cacheKey(lang language.Language, text string) string {
	return string(lang) + "\x00" + text
}

// PlayWelcome speaks the language's welcome message and blocks until it
// finishes. Question prompts requested while the welcome is playing are
// dropped. A welcome failure is reported but never blocks the interview.
func (p *Player) PlayWelcome(ctx context.Context, lang language.Language) error {
	message := lang.WelcomeMessage()
	if message == "" {
		return fmt.Errorf("no welcome message for language %q", lang)
	}

	p.mu.Lock()
	p.welcomeActive = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.welcomeActive = false
		p.mu.Unlock()
	}()

	synthesize := p.synth.Synthesize
	if ws, ok := p.synth.(WelcomeSynthesizer); ok {
		synthesize = ws.SynthesizeWelcome
	}
	if err := p.speak(ctx, lang, message, synthesize); err != nil {
		log.Printf("playback: welcome message failed: %v", err)
		return err
	}
	return nil
}

// PromptQuestion speaks one question. It is a no-op while the welcome
// message is still playing. A prompt already in flight is cancelled first.
func (p *Player) PromptQuestion(ctx context.Context, text string, lang language.Language) error {
	p.mu.Lock()
	if p.welcomeActive {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	p.Stop()
	return p.speak(ctx, lang, text, p.synth.Synthesize)
}

// synthFunc produces audio for one text in one language.
type synthFunc func(ctx context.Context, text string, lang language.Language) ([]byte, error)

// speak synthesizes (or reuses cached audio for) the text and plays it to
// completion.
func (p *Player) speak(ctx context.Context, lang language.Language, text string, synthesize synthFunc) error {
	audio, err := p.audioFor(ctx, lang, text, synthesize)
	if err != nil {
		return err
	}

	playCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.playID++
	id := p.playID
	p.cancel = cancel
	p.mu.Unlock()
	defer func() {
		cancel()
		p.mu.Lock()
		if p.playID == id {
			p.cancel = nil
		}
		p.mu.Unlock()
	}()

	p.playMu.Lock()
	defer p.playMu.Unlock()

	if playCtx.Err() != nil {
		return playCtx.Err()
	}
	if err := p.sink.Play(playCtx, audio); err != nil {
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}

func (p *Player) audioFor(ctx context.Context, lang language.Language, text string, synthesize synthFunc) ([]byte, error) {
	key := cacheKey(lang, text)

	p.mu.Lock()
	audio, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return audio, nil
	}

	audio, err := synthesize(ctx, text, lang)
	if err != nil {
		return nil, fmt.Errorf("synthesize prompt: %w", err)
	}

	p.mu.Lock()
	p.cache[key] = audio
	p.mu.Unlock()
	return audio, nil
}

// Cached reports whether audio for the prompt is already synthesized.
func (p *Player) Cached(lang language.Language, text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.cache[cacheKey(lang, text)]
	return ok
}

// Stop cancels the playback currently in flight, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset stops playback and releases all cached audio.
func (p *Player) Reset() {
	p.Stop()
	p.mu.Lock()
	p.cache = make(map[string][]byte)
	p.mu.Unlock()
}
