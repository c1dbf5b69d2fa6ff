// SPDX-License-Identifier: MIT
package config

// Core configuration constants that define the boundaries and defaults
// for the scope post-processing engine.
const (
	// Default values for the acquisition and processing configuration.
	DefaultPhysicalChannels  = 2      // Two hardware channels
	DefaultMathChannels      = 1      // One derived channel
	DefaultDeviceID          = MinDeviceID
	DefaultSampleRate        = 48000  // Hz
	DefaultRecordLength      = 1024   // Samples per channel per cycle
	DefaultMathMode          = "add"  // Derived-channel arithmetic
	DefaultWindow            = "hann" // Spectrum window function
	DefaultSpectrumReference = 0.0    // dB
	DefaultSpectrumLimit     = -60.0  // dB
	DefaultLogLevel          = "info"

	// Hardware and processing limits.
	MinDeviceID     = -1      // -1 represents the system default device
	MinSampleRate   = 8000    // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000  // Maximum supported sample rate (Hz)
	MaxRecordLength = 1 << 20 // Longest supported record
)
