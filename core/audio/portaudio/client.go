package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"github.com/angangwa/azure-speech-to-text/core/audio"
	"github.com/gordonklaus/portaudio"
)

type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	in []int16
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
	}, nil
}

func (c *Client) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	log.Println("Starting microphone capture. Speak now...")
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}
	defer func() { _ = c.stream.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.stream.Read()
			if fatalReadError(err) {
				return fmt.Errorf("failed to read from portaudio stream: %w", err)
			}
			if err != nil {
				log.Printf("Portaudio input overflowed, some captured audio was dropped")
			}

			audioBuffer := bytes.Buffer{}
			binary.Write(&audioBuffer, binary.LittleEndian, c.in)
			onAudio(audioBuffer.Bytes())
		}
	}
}

// fatalReadError reports whether a capture read failed for good. Input
// overflow only means samples were dropped between reads; the buffer is
// still filled and usable.
func fatalReadError(err error) bool {
	return err != nil && !errors.Is(err, portaudio.InputOverflowed)
}

func (c *Client) Close() {
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
