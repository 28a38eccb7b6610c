// Package speech implements the speech-to-text capability boundary.
// A server has no microphone, so the default recognizer is Unavailable;
// any real implementation plugs in behind the same interface.
package speech

import (
	"context"
	"errors"
	"time"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// ErrUnavailable is returned when the target has no speech capability.
var ErrUnavailable = errors.New("speech recognition is not supported on this device")

// Unavailable is the no-capability recognizer.
type Unavailable struct{}

func NewUnavailable() Unavailable {
	return Unavailable{}
}

func (Unavailable) Available() bool {
	return false
}

func (Unavailable) Recognize(ctx context.Context) (string, error) {
	return "", ErrUnavailable
}

// bounded wraps a recognizer with the fixed upper timeout a single
// utterance is allowed to take.
type bounded struct {
	inner   domain.SpeechRecognizer
	timeout time.Duration
}

// WithTimeout bounds every Recognize call on r to d.
func WithTimeout(r domain.SpeechRecognizer, d time.Duration) domain.SpeechRecognizer {
	return bounded{inner: r, timeout: d}
}

func (b bounded) Available() bool {
	return b.inner.Available()
}

func (b bounded) Recognize(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.Recognize(ctx)
}

// Scripted returns a fixed transcript after an optional delay; used in
// tests and mock mode.
type Scripted struct {
	Transcript string
	Delay      time.Duration
	Err        error
}

func (s Scripted) Available() bool {
	return true
}

func (s Scripted) Recognize(ctx context.Context) (string, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Transcript, nil
}
