package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

var (
	ErrInvalidWAV = errors.New("not a valid wav stream")
	ErrEmpty      = errors.New("audio has no samples")
)

// Signal is a mono waveform normalized to [-1, 1]
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds
func (s *Signal) Duration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Decode reads a PCM wav stream and downmixes it to mono
func Decode(r io.ReadSeeker) (*Signal, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
		return nil, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read pcm data: %w", err)
	}

	channels := int(dec.NumChans)
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, ErrEmpty
	}

	bitDepth := int(dec.BitDepth)
	scale := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit PCM is unsigned
		offset = scale
	}

	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += (float64(buf.Data[i*channels+c]) - offset) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return &Signal{Samples: samples, SampleRate: int(dec.SampleRate)}, nil
}

// Encode writes samples as 16-bit mono PCM wav
func Encode(w io.WriteSeeker, samples []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(clamp(s, -1, 1) * 32767))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return enc.Close()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EncodeBytes renders samples as an in-memory wav file
func EncodeBytes(samples []float64, sampleRate int) ([]byte, error) {
	f, err := afero.NewMemMapFs().Create("clip.wav")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := Encode(f, samples, sampleRate); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}
