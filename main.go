// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"runtime"

	"sidegain/cmd"
	"sidegain/internal/audio"
	"sidegain/internal/config"
	applog "sidegain/internal/log"
	"sidegain/internal/state"
	"sidegain/internal/transport"
	"sidegain/internal/transport/udp"
	"sidegain/internal/tui"
	"sidegain/pkg/build"
)

// main is the entry point for the gain stage application.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Initialize PortAudio
//   - Parse command line arguments
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start the duplex stream and gain processing
//   - Restore the saved session
//   - Start recording and meter publishers if enabled
//   - Run the terminal UI
//
// 3. Shutdown Phase (Cold Path):
//   - Stop publishers and recording
//   - Save the session
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		applog.Fatal(err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the stream callback (time-critical)
	// - One thread for UI and I/O operations
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		applog.Fatal(err)
	}
	defer audio.Terminate()

	cfg, render, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatal(err)
	}

	configureLogging(cfg)

	// Handle one-off commands that don't require the engine to be running.
	switch cfg.Command {
	case "list":
		if err := tui.StartDeviceListUI(); err != nil {
			applog.Fatal(err)
		}
		return
	case "render":
		summary, err := audio.RenderFile(render.InputFile, render.OutputFile, audio.RenderOptions{
			GainDB:      cfg.GainDB,
			BlockFrames: cfg.FramesPerBuffer,
		})
		if err != nil {
			applog.Fatal(err)
		}
		fmt.Printf("Rendered %d frames (%d ch, %d Hz) to %s\n",
			summary.Frames, summary.Channels, summary.SampleRate, render.OutputFile)
		fmt.Printf("Peak: %.2f dBFS, RMS: %.2f dBFS\n", summary.PeakDB, summary.RMSDB)
		return
	}

	if !cfg.TUIMode {
		return
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	engine, err := audio.NewEngine(cfg)
	if err != nil {
		applog.Fatal(err)
	}

	// Restore the saved session before the stream starts so the smoothers
	// begin at the stored targets.
	editor := state.EditorState{}
	if cfg.SessionFile != "" {
		editor, err = state.LoadFile(cfg.SessionFile, engine.Processor().Params())
		if err != nil {
			applog.Warnf("Could not restore session: %v", err)
		}
	}

	// The first stream callback marks the start of the hot path.
	if err := engine.Start(); err != nil {
		applog.Fatal(err)
	}

	if cfg.RecordOutputStream {
		if err := engine.StartRecording(cfg.OutputFile); err != nil {
			applog.Fatal(err)
		}
	}

	publisher := startPublisher(cfg, engine)

	// The UI owns the terminal until the user quits.
	editor, err = tui.RunMeterUI(engine, editor)
	if err != nil {
		applog.Errorf("UI error: %v", err)
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if publisher != nil {
		if err := publisher.Stop(); err != nil {
			applog.Errorf("Error stopping meter publisher: %v", err)
		}
	}

	if cfg.RecordOutputStream {
		if err := engine.StopRecording(); err != nil {
			applog.Errorf("Error stopping recording: %v", err)
		}
		fmt.Printf("\nRecording saved to: %s\n", cfg.OutputFile)
	}

	if cfg.SessionFile != "" {
		if err := state.SaveFile(cfg.SessionFile, engine.Processor().Params(), editor); err != nil {
			applog.Errorf("Could not save session: %v", err)
		}
	}

	if err := engine.Close(); err != nil {
		applog.Errorf("Error closing audio engine: %v", err)
	}
}

// configureLogging applies the configured log level, with --verbose forcing
// debug output.
func configureLogging(cfg *config.Config) {
	if cfg.Verbose {
		applog.SetLevel(applog.LevelDebug)
		return
	}
	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
}

// startPublisher wires up the configured meter transports and starts the
// publisher. Returns nil if no network transport is enabled.
func startPublisher(cfg *config.Config, engine *audio.Engine) *transport.MeterPublisher {
	var transports []transport.Transport

	if cfg.WSEnabled {
		transports = append(transports, transport.NewWebSocketTransport(cfg.WSAddr))
	}
	if cfg.UDPEnabled {
		ft, err := udp.NewFrameTransportAddr(cfg.UDPTargetAddress)
		if err != nil {
			applog.Errorf("Could not set up UDP transport: %v", err)
		} else {
			transports = append(transports, ft)
		}
	}
	if len(transports) == 0 {
		return nil
	}

	publisher, err := transport.NewMeterPublisher(cfg.PublishInterval, engine, transports...)
	if err != nil {
		applog.Errorf("Could not start meter publisher: %v", err)
		return nil
	}
	publisher.Start()
	return publisher
}
