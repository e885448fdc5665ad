package transcription

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angangwa/azure-speech-to-text/core/audio"
)

type audioInput struct {
	// base stores the configured source used for streaming audio.
	base audioSourceBase
	// fineCaptureControls is set when the source supports explicit capture controls.
	fineCaptureControls AudioSourceFine

	// connected reports whether a concrete source is currently configured.
	connected atomic.Bool
}

func newAudioInput(client audioSourceBase) *audioInput {
	input := audioInput{}
	input.Set(client)
	return &input
}

func (a *audioInput) Set(client audioSourceBase) {
	if a == nil {
		return
	}

	a.base = client
	a.fineCaptureControls = nil
	a.connected.Store(false)

	if client == nil {
		return
	}

	a.connected.Store(true)
	if fine, ok := client.(AudioSourceFine); ok {
		a.fineCaptureControls = fine
	}
}

func (a *audioInput) IsConfigured() bool            { return a != nil && a.connected.Load() }
func (a *audioInput) SupportsCaptureControls() bool { return a != nil && a.fineCaptureControls != nil }

// Stream pumps captured audio into onAudio until ctx is cancelled or the
// source ends. Sources with explicit capture controls are started and
// stopped around the context; plain sources stream directly. Short capture
// gaps are padded with silence so the stream stays continuous. Returns nil
// immediately when no source is configured.
func (a *audioInput) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	if !a.IsConfigured() {
		return nil
	}

	fillerCtx, stopFiller := context.WithCancel(ctx)
	defer stopFiller()
	filler := newSilenceFiller(a.EncodingInfo(), onAudio)
	go filler.run(fillerCtx)

	if a.SupportsCaptureControls() {
		if err := a.fineCaptureControls.StartCapture(ctx, filler.observe); err != nil {
			return err
		}
		<-ctx.Done()
		return a.fineCaptureControls.StopCapture()
	}

	return a.base.Stream(ctx, filler.observe)
}

func (a *audioInput) Close() error {
	var errs error
	if a.base != nil && a.IsConfigured() {
		if a.fineCaptureControls != nil {
			if err := a.fineCaptureControls.StopCapture(); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		a.base.Close()
	}
	a.connected.Store(false)

	return errs
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}

const (
	// silenceFrameDuration is both the gap filler's tick interval and the
	// length of audio each silence chunk covers.
	silenceFrameDuration = 50 * time.Millisecond
	// silencePaddingLimit bounds how much of a single capture gap is
	// padded before the stream is left quiet.
	silencePaddingLimit = time.Second
)

// silenceFiller pads short capture gaps with silence so the transport
// sees a continuous audio stream while the microphone is quiet.
type silenceFiller struct {
	chunk   []byte
	onAudio func(audio []byte)

	mu       sync.Mutex
	lastSeen time.Time
}

func newSilenceFiller(encoding audio.EncodingInfo, onAudio func(audio []byte)) *silenceFiller {
	chunk := make([]byte, max(0, encoding.BytesPerSecond()*int(silenceFrameDuration.Milliseconds())/1000))
	for i := range chunk {
		chunk[i] = encoding.SilenceValue()
	}

	return &silenceFiller{
		chunk:    chunk,
		onAudio:  onAudio,
		lastSeen: time.Now(),
	}
}

// observe forwards one captured frame and marks the stream live.
func (f *silenceFiller) observe(audio []byte) {
	f.mu.Lock()
	f.lastSeen = time.Now()
	f.mu.Unlock()
	f.onAudio(audio)
}

func (f *silenceFiller) run(ctx context.Context) {
	if len(f.chunk) == 0 {
		return
	}

	ticker := time.NewTicker(silenceFrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.mu.Lock()
			quiet := time.Since(f.lastSeen)
			f.mu.Unlock()
			if quiet > silenceFrameDuration && quiet < silencePaddingLimit {
				f.onAudio(f.chunk)
			}
		}
	}
}
