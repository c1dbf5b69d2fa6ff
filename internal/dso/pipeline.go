// SPDX-License-Identifier: MIT
package dso

// Pipeline runs the per-cycle processing pass: math-channel synthesis,
// then spectral analysis, over a single Result it owns exclusively for
// the duration of the pass. The finished Result is published as an
// immutable snapshot. The pipeline holds no queue of pending cycles; if
// processing outlasts acquisition the caller decides whether to drop or
// wait.
type Pipeline struct {
	processors []Processor
	publisher  *Publisher
}

// NewPipeline returns a pipeline for records with the given number of
// physical channels, reading settings live on each cycle.
func NewPipeline(physicalChannels int, settings *Settings) *Pipeline {
	return &Pipeline{
		processors: []Processor{
			NewMathChannelSynthesizer(physicalChannels, settings),
			NewSpectrumAnalyzer(settings, nil),
		},
		publisher: &Publisher{},
	}
}

// Run processes res to completion and publishes it. res must not be
// touched by the caller afterward except through Publisher().Latest().
func (p *Pipeline) Run(res *Result) {
	for _, proc := range p.processors {
		proc.Process(res)
	}
	p.publisher.Publish(res)
}

// Publisher exposes the snapshot stream for readers.
func (p *Pipeline) Publisher() *Publisher {
	return p.publisher
}
