package speaker

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/wav"
)

const (
	wavFormatPCM = 1
	wavHeaderLen = 12
)

// decodeSpeech accepts a mono or stereo 16-bit PCM WAV, or headerless s16le mono.
func decodeSpeech(data []byte) ([]int16, int, error) {
	if len(data) >= wavHeaderLen && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")) {
		return decodeWAV(data)
	}
	return int16s(data), defaultRawSampleRate, nil
}

func decodeWAV(data []byte) ([]int16, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, 0, fmt.Errorf("invalid wav: %w", err)
		}
		return nil, 0, errors.New("invalid wav: missing fmt chunk")
	}
	if dec.WavAudioFormat != wavFormatPCM || dec.BitDepth != 16 {
		return nil, 0, fmt.Errorf("unsupported wav encoding (format=%d bits=%d)", dec.WavAudioFormat, dec.BitDepth)
	}
	if dec.NumChans != 1 && dec.NumChans != 2 {
		return nil, 0, fmt.Errorf("unsupported wav channel count %d", dec.NumChans)
	}

	// Streaming writers leave the data size unset; the decoder reads to EOF.
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read wav data: %w", err)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	if buf.Format.NumChannels == 2 {
		samples = downmix(samples)
	}
	return samples, buf.Format.SampleRate, nil
}

func int16s(data []byte) []int16 {
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return out
}

func downmix(stereo []int16) []int16 {
	mono := make([]int16, len(stereo)/2)
	for i := range mono {
		mono[i] = int16((int32(stereo[2*i]) + int32(stereo[2*i+1])) / 2)
	}
	return mono
}
