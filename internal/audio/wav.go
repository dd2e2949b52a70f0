package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"audiora/internal/domain"
)

const bitDepth = 16

// WAVEncoder wraps signed 16-bit little-endian PCM in a WAV container.
type WAVEncoder struct {
	SampleRate int
	Channels   int
}

func NewWAVEncoder(sampleRate, channels int) WAVEncoder {
	cfg := Config{SampleRate: sampleRate, Channels: channels}.withDefaults()
	return WAVEncoder{SampleRate: cfg.SampleRate, Channels: cfg.Channels}
}

func (e WAVEncoder) Encode(raw []byte) (domain.AudioUnit, error) {
	if len(raw) < 2 {
		return domain.AudioUnit{}, errors.New("not enough PCM data to encode")
	}

	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[i*2:])))
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, e.SampleRate, bitDepth, e.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: e.Channels,
			SampleRate:  e.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return domain.AudioUnit{}, fmt.Errorf("failed to encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return domain.AudioUnit{}, fmt.Errorf("failed to finish wav: %w", err)
	}

	return domain.AudioUnit{Data: out.Bytes(), MediaType: domain.MediaTypeWAV}, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the wav encoder seeks back to patch header sizes.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.buf) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(s.pos) + offset
	case io.SeekEnd:
		next = int64(len(s.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if next < 0 {
		return 0, errors.New("negative position")
	}
	s.pos = int(next)
	return next, nil
}

func (s *seekBuffer) Bytes() []byte {
	return s.buf
}
