// Package capture wraps the platform capabilities the pipeline depends on:
// microphone access and geolocation. Both are modelled as small interfaces so
// the service can run against in-process implementations.
package capture

import (
	"context"

	"github.com/pkg/errors"
)

// ErrMicrophoneDenied is returned when the platform refuses microphone access.
var ErrMicrophoneDenied = errors.New("microphone access denied")

// Microphone is the audio-capture capability. Request either grants access or
// fails with ErrMicrophoneDenied; the actual audio bytes arrive as opaque
// chunks pushed by the client.
type Microphone interface {
	Request(ctx context.Context) error
}

type grantingMicrophone struct{}

// NewMicrophone returns the default capability, which always grants access.
func NewMicrophone() Microphone {
	return grantingMicrophone{}
}

func (grantingMicrophone) Request(ctx context.Context) error {
	return nil
}

// DeniedMicrophone always refuses access. Used to exercise the denial path.
type DeniedMicrophone struct{}

func (DeniedMicrophone) Request(ctx context.Context) error {
	return ErrMicrophoneDenied
}

// ChunkBuffer accumulates capture chunks for one recording. Chunks concatenate,
// in push order, into a single payload.
type ChunkBuffer struct {
	chunks [][]byte
}

func (b *ChunkBuffer) Push(chunk []byte) {
	b.chunks = append(b.chunks, chunk)
}

// Drain concatenates all buffered chunks into one payload and resets the
// buffer.
func (b *ChunkBuffer) Drain() []byte {
	var n int
	for _, c := range b.chunks {
		n += len(c)
	}
	payload := make([]byte, 0, n)
	for _, c := range b.chunks {
		payload = append(payload, c...)
	}
	b.chunks = nil
	return payload
}

func (b *ChunkBuffer) Len() int {
	return len(b.chunks)
}
