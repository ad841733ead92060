// Package variant implements the concrete processor-type tags spec.md §3
// names ("null, csound, plugin, sound-file, instrument, pianoroll,
// sample-script, midi-source, midi-cc-to-cv, step-sequencer,
// custom-csound, control-track, midi-velocity-mapper, midi-looper,
// midi-monitor, oscilloscope, vumeter, vca, noise, oscillator") as
// pkg/processor.Behavior implementations. Spec.md explicitly leaves their
// internals unspecified beyond the Processor contract, so each is built
// directly on the matching pkg/dsp/* component the way a
// plugins wire a dsp primitive into a BaseProcessor callback
// (pkg/framework/plugin/processor.go).
//
// Three variants (csound, custom-csound, plugin) are declared
// unimplemented rather than half-built: csound/custom-csound require
// embedding the CSound scripting engine (no pack library provides this),
// and plugin means hosting a third-party LV2/VST plugin (out of scope for
// an engine that itself defines the processor contract). sound-file is a
// real implementation (sound_file.go) built on pkg/host.AudioFileSubSystem.
// See DESIGN.md.
package variant

import "github.com/rimewave/audioproc/pkg/processor"

func audioPort(name string, dir processor.PortDirection) processor.PortDescription {
	return processor.PortDescription{Name: name, Direction: dir}
}

func desc(typeTag string, ports ...processor.PortDescription) processor.NodeDescription {
	return processor.NodeDescription{TypeTag: typeTag, Ports: ports}
}
