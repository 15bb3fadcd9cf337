package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"mime"
	"os"
	"strconv"
	"strings"

	"github.com/phrazzld/bionexus-api/internal/generation"
)

// Gemini speech models return 16-bit mono PCM at 24kHz unless the MIME type
// says otherwise.
const (
	defaultSampleRate = 24000
	pcmChannels       = 1
	pcmBitsPerSample  = 16
)

// writeAudio writes audio to path, wrapping raw PCM in a WAV container.
func writeAudio(path string, audio *generation.Audio) error {
	if audio == nil || len(audio.Data) == 0 {
		return fmt.Errorf("no audio data")
	}
	data := audio.Data
	if rate, ok := pcmRate(audio.MIMEType); ok {
		data = wavFile(audio.Data, rate)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing audio: %w", err)
	}
	return nil
}

// pcmRate reports whether mimeType names raw L16/PCM audio and its sample rate.
func pcmRate(mimeType string) (int, bool) {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return 0, false
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType != "audio/l16" && mediaType != "audio/pcm" {
		return 0, false
	}
	rate, err := strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		rate = defaultSampleRate
	}
	return rate, true
}

// wavFile prepends a 44-byte RIFF header to little-endian PCM samples.
func wavFile(pcm []byte, sampleRate int) []byte {
	blockAlign := pcmChannels * pcmBitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(pcmChannels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(pcmBitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
