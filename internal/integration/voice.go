// Package integration holds the optional hive-voice service: chat from
// dead or silenced players is rendered as waggle dance glyphs instead
// of being dropped. Everything here is best-effort; callers fall back
// to suppressing the line when translation fails.
package integration

import (
	"context"
	"errors"
	"strings"
)

var ErrUnavailable = errors.New("voice service unavailable")

// Voice controls an external voice channel tied to a match: the game
// mutes the dead and the silenced there. All calls are best effort.
type Voice interface {
	Mute(ctx context.Context, playerID string) error
	Unmute(ctx context.Context, playerID string) error
}

// NopVoice is the default for tables without a voice channel.
type NopVoice struct{}

func (NopVoice) Mute(ctx context.Context, playerID string) error   { return nil }
func (NopVoice) Unmute(ctx context.Context, playerID string) error { return nil }

// Translator renders a chat line into hive voice.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Nop drops every line, for deployments without a voice service.
type Nop struct{}

func (Nop) Translate(ctx context.Context, text string) (string, error) {
	return "", ErrUnavailable
}

// glyphs maps a few loaded words to dance signs. Unknown words all
// collapse into the same buzz, which is the point: the dead may hum
// but not inform.
var glyphs = map[string]string{
	"yes":  "⬆",  // upward run
	"no":   "⬇",  // downward run
	"wasp": "⚠",  // alarm dance
	"bee":  "\U0001F41D",
	"help": "\U0001F4A2",
	"vote": "\U0001F5F3",
}

const buzz = "\U0001F300"

// Keyword is the built-in deterministic translator.
type Keyword struct{}

func (Keyword) Translate(ctx context.Context, text string) (string, error) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return "", nil
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?")
		if g, ok := glyphs[w]; ok {
			out = append(out, g)
		} else {
			out = append(out, buzz)
		}
	}
	return strings.Join(out, " "), nil
}

// Service tries a primary translator and falls back to the keyword one
// when the primary errors out.
type Service struct {
	primary  Translator
	fallback Translator
}

func NewService(primary Translator) *Service {
	return &Service{primary: primary, fallback: Keyword{}}
}

func (s *Service) Translate(ctx context.Context, text string) (string, error) {
	if s.primary != nil {
		if out, err := s.primary.Translate(ctx, text); err == nil {
			return out, nil
		}
	}
	return s.fallback.Translate(ctx, text)
}
