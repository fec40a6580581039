package sound

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"

	"exiled-search/pkg/logger"
)

const (
	sampleRate beep.SampleRate = 44100
	bufferSize                 = 4096
	volume                     = -1.5
)

// Tone is one note of a cue.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

var (
	SuccessCue = []Tone{{Freq: 880, Duration: 90 * time.Millisecond}, {Freq: 1320, Duration: 140 * time.Millisecond}}
	FailureCue = []Tone{{Freq: 440, Duration: 160 * time.Millisecond}, {Freq: 294, Duration: 240 * time.Millisecond}}
)

// Sequence renders tones back to back at sr.
func Sequence(sr beep.SampleRate, tones []Tone) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		tone, err := generators.SineTone(sr, t.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.0fHz: %w", t.Freq, err)
		}
		parts = append(parts, beep.Take(sr.N(t.Duration), tone))
	}
	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: volume}, nil
}

// SoundNotifier plays short cues when a search finishes.
type SoundNotifier struct {
	log      *logger.Logger
	initOnce sync.Once
	initErr  error
}

func NewSoundNotifier(log *logger.Logger) *SoundNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &SoundNotifier{log: log}
}

func (s *SoundNotifier) init() error {
	s.initOnce.Do(func() {
		if err := speaker.Init(sampleRate, bufferSize); err != nil {
			s.initErr = fmt.Errorf("failed to initialize audio: %w", err)
		}
	})
	return s.initErr
}

func (s *SoundNotifier) PlaySuccess() error {
	return s.play(SuccessCue)
}

func (s *SoundNotifier) PlayFailure() error {
	return s.play(FailureCue)
}

// play blocks until the cue has finished.
func (s *SoundNotifier) play(tones []Tone) error {
	if err := s.init(); err != nil {
		return err
	}
	streamer, err := Sequence(sampleRate, tones)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done

	s.log.Debug("Played sound cue", "tones", len(tones))
	return nil
}
