// SPDX-License-Identifier: MIT
/*
Package acquire implements the acquisition sources that feed raw
per-channel voltage records into the post-processing pipeline: WAV files
for offline analysis and PortAudio capture for live operation.

Both sources produce a fresh dso.Result per cycle with the physical
channels populated and the derived channels left empty, exactly the shape
the pipeline expects to take exclusive ownership of.
*/
package acquire

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"scope/internal/dso"
)

// ReadWAV decodes a WAV file into a single-cycle Result with
// physicalChannels + mathChannels channel records. WAV channel i feeds
// physical channel i; physical channels beyond the file's channel count
// stay empty and are later skipped by the analyzer. Samples are
// normalized to [-1, 1) from the source bit depth.
func ReadWAV(path string, physicalChannels, mathChannels int) (*dso.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV file: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("WAV file %s carries no sample rate", path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}
	norm := 1.0 / float64(int64(1)<<(bitDepth-1))

	interval := 1.0 / float64(buf.Format.SampleRate)
	fileChannels := buf.Format.NumChannels
	if fileChannels <= 0 {
		return nil, fmt.Errorf("WAV file %s carries no channels", path)
	}
	frames := len(buf.Data) / fileChannels

	res := dso.NewResult(physicalChannels + mathChannels)
	for ch := 0; ch < physicalChannels; ch++ {
		rec := res.ModifyData(ch)
		rec.Voltage.Interval = interval
		if ch >= fileChannels {
			continue
		}
		samples := make([]float64, frames)
		for i := range samples {
			samples[i] = float64(buf.Data[i*fileChannels+ch]) * norm
		}
		rec.Voltage.Sample = samples
	}
	return res, nil
}
