package ui

import (
	"encoding/binary"
	"sync"
)

// SampleSink accumulates the APU's mono float32 samples (spec §4.6's
// 65,536 Hz output) and serves them to ebiten's audio.Player as 16-bit
// little-endian stereo PCM, duplicating the mono channel. Grounded on the
// teacher's apuStream in internal/ui/audio.go, trimmed of its adaptive-
// buffering and stats-overlay machinery.
type SampleSink struct {
	mu  sync.Mutex
	buf []float32
}

// NewSampleSink returns an empty sink ready to be handed to emu.New (as the
// apu.Sink callback, via Push) and to NewApp (as the audio source).
func NewSampleSink() *SampleSink {
	return &SampleSink{}
}

// Push is the apu.Sink callback handed to emu.New.
func (s *SampleSink) Push(samples []float32) {
	s.mu.Lock()
	s.buf = append(s.buf, samples...)
	s.mu.Unlock()
}

func (s *SampleSink) Read(p []byte) (int, error) {
	frames := len(p) / 4 // 4 bytes per stereo int16 frame
	if frames == 0 {
		return 0, nil
	}

	s.mu.Lock()
	n := frames
	if n > len(s.buf) {
		n = len(s.buf)
	}
	chunk := append([]float32(nil), s.buf[:n]...)
	s.buf = s.buf[n:]
	s.mu.Unlock()

	for i, v := range chunk {
		sample := int16(clampFloat(v) * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(sample))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(sample))
	}
	for i := len(chunk); i < frames; i++ {
		binary.LittleEndian.PutUint16(p[i*4:], 0)
		binary.LittleEndian.PutUint16(p[i*4+2:], 0)
	}
	return frames * 4, nil
}

func clampFloat(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
