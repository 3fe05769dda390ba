package capture

import (
	"bytes"
	"encoding/binary"
)

// WAVMimeType is the mime type of audio produced by ToWAV.
const WAVMimeType = "audio/wav"

// ToWAV wraps raw 16-bit PCM audio in a WAV container so the transcription
// backend can identify the format.
func ToWAV(rawAudio []byte, sampleRate, channels int) []byte {
	var buf bytes.Buffer

	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	dataSize := len(rawAudio)
	fileSize := 36 + dataSize

	// WAV header
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))            // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))             // PCM format
	binary.Write(&buf, binary.LittleEndian, uint16(channels))      // number of channels
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))    // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))      // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))    // block align
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample)) // bits per sample

	// data chunk
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(rawAudio)

	return buf.Bytes()
}

// PCMDuration returns the duration in whole seconds of raw 16-bit PCM audio.
func PCMDuration(sizeBytes, sampleRate, channels int) int {
	bytesPerSecond := sampleRate * channels * 2
	if bytesPerSecond == 0 {
		return 0
	}
	return sizeBytes / bytesPerSecond
}
