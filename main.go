// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scope/cmd"
	"scope/internal/acquire"
	"scope/internal/config"
	"scope/internal/dso"
	"scope/internal/log"
	"scope/internal/transport"
)

// main wires the three phases of a run: configuration (cold), the
// per-cycle acquisition/processing loop (hot, capture mode only), and
// shutdown (cold). The processing pipeline itself never blocks and holds
// no state across cycles beyond its caches, so all lifecycle handling
// lives here.
func main() {
	cfg, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg == nil || cfg.Command == "" {
		return // help was shown
	}

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}
	if cfg.Debug {
		log.SetLevel(log.LevelDebug)
	}

	switch cfg.Command {
	case "list":
		err = withPortAudio(acquire.ListDevices)
	case "analyze":
		err = runAnalyze(cfg)
	case "capture":
		err = withPortAudio(func() error { return runCapture(cfg) })
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// withPortAudio brackets fn with PortAudio subsystem setup and teardown.
func withPortAudio(fn func() error) error {
	if err := acquire.Initialize(); err != nil {
		return err
	}
	defer acquire.Terminate()
	return fn()
}

// runAnalyze processes a single WAV record through the pipeline and
// prints the per-channel statistics.
func runAnalyze(cfg *config.Config) error {
	settings, err := cfg.ScopeSettings()
	if err != nil {
		return err
	}

	res, err := acquire.ReadWAV(cfg.AnalyzeFile, cfg.Acquire.PhysicalChannels, cfg.Scope.MathChannels)
	if err != nil {
		return err
	}

	pipeline := dso.NewPipeline(cfg.Acquire.PhysicalChannels, settings)
	pipeline.Run(res)

	snapshot := pipeline.Publisher().Latest()
	for ch := 0; ch < snapshot.ChannelCount(); ch++ {
		rec := snapshot.Data(ch)
		if len(rec.Voltage.Sample) == 0 {
			fmt.Printf("ch%d: no data\n", ch)
			continue
		}
		fmt.Printf("ch%d: f=%9.2f Hz  dc=%8.5f V  ac=%8.5f V  rms=%8.5f V  (%d samples, %d bins)\n",
			ch, rec.Frequency, rec.DC, rec.AC, rec.RMS,
			len(rec.Voltage.Sample), len(rec.Spectrum.Sample))
	}
	return nil
}

// runCapture runs the live acquisition loop until interrupted: capture a
// record, process it, publish the snapshot, optionally broadcast it.
func runCapture(cfg *config.Config) error {
	settings, err := cfg.ScopeSettings()
	if err != nil {
		return err
	}

	src, err := acquire.OpenDeviceSource(acquire.DeviceSourceConfig{
		DeviceID:     cfg.Acquire.InputDevice,
		SampleRate:   cfg.Acquire.SampleRate,
		RecordLength: cfg.Acquire.RecordLength,
		Channels:     cfg.Acquire.PhysicalChannels,
		MathChannels: cfg.Scope.MathChannels,
		LowLatency:   cfg.Acquire.LowLatency,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	var sink transport.Transport
	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		defer ws.Close()
		sink = ws
	}

	pipeline := dso.NewPipeline(cfg.Acquire.PhysicalChannels, settings)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	log.Infof("capture: processing cycles, interrupt to stop")
	var cycle uint64
	for {
		select {
		case <-done:
			log.Infof("capture: stopped after %d cycles", cycle)
			return nil
		default:
		}

		res, err := src.Capture()
		if err != nil {
			return err
		}
		pipeline.Run(res)
		cycle++

		if sink != nil {
			sink.Send(transport.Snapshot(pipeline.Publisher().Latest(), cycle))
		}
		if rec := pipeline.Publisher().Latest().Data(0); rec != nil {
			log.Debugf("cycle %d: ch0 f=%.2f Hz rms=%.5f V", cycle, rec.Frequency, rec.RMS)
		}
	}
}
