// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"sidegain/internal/config"
	"sidegain/pkg/build"

	"github.com/spf13/cobra"
)

// RenderArgs carries the positional arguments of the render command.
type RenderArgs struct {
	InputFile  string
	OutputFile string
}

// ParseArgs builds the configuration from a YAML file (if present), the
// environment, and command line flags, then executes the CLI. The returned
// config's Command field tells main which mode to run.
func ParseArgs() (*config.Config, *RenderArgs, error) {
	buildInfo := build.GetBuildFlags()

	var configPath string
	options := config.NewConfig()
	render := &RenderArgs{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Layer the config file and environment under the flag values:
			// load first, then re-apply any flags the user set explicitly.
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			merged := *loaded
			applyExplicitFlags(cmd, &merged, options)
			*options = merged
			return options.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.TUIMode = true
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
			options.TUIMode = false
		},
	}
	rootCmd.AddCommand(listCmd)

	// Render command: offline processing of a WAV file through the gain stage.
	renderCmd := &cobra.Command{
		Use:   "render <input.wav> <output.wav>",
		Short: "Process a WAV file through the gain stage offline",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "render"
			options.TUIMode = false
			render.InputFile = args[0]
			render.OutputFile = args[1]
		},
	}
	rootCmd.AddCommand(renderCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file")

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&options.InputDeviceID, "input-device", "i", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.OutputDeviceID, "output-device", "d", config.DefaultDeviceID,
		"Specify output device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.Channels, "channels", "c", config.DefaultChannels,
		"Number of main bus channels (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().IntVar(&options.SideChainChannels, "side-chain-channels", config.DefaultSideChainChannels,
		"Number of side-chain input channels (0 disables the side-chain bus)")
	rootCmd.PersistentFlags().Float64VarP(&options.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")

	rootCmd.PersistentFlags().IntVarP(&options.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Gain Configuration
	rootCmd.PersistentFlags().Float64VarP(&options.GainDB, "gain", "g", config.DefaultGainDB,
		"Main gain in dB (-30 to +30)")
	rootCmd.PersistentFlags().Float64Var(&options.SideChainGainDB, "side-chain-gain", config.DefaultSideChainGainDB,
		"Side-chain gain in dB (-30 to +30)")

	// Recording Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.RecordOutputStream, "record", "r", false,
		"Record the processed output stream to a WAV file")
	rootCmd.PersistentFlags().StringVarP(&options.OutputFile, "output", "o", config.DefaultOutputFile,
		"Output file name. Default is recording-MM-DD-YYYY-HHMMSS.wav")

	// Session Configuration
	rootCmd.PersistentFlags().StringVar(&options.SessionFile, "session", config.DefaultSessionFile,
		"Path to a session file for saving/restoring parameter state")

	// Transport Configuration
	rootCmd.PersistentFlags().BoolVar(&options.WSEnabled, "ws", false,
		"Serve meter frames over WebSocket")
	rootCmd.PersistentFlags().StringVar(&options.WSAddr, "ws-addr", config.DefaultWSAddr,
		"WebSocket listen address")
	rootCmd.PersistentFlags().BoolVar(&options.UDPEnabled, "udp", false,
		"Send meter frames over UDP")
	rootCmd.PersistentFlags().StringVar(&options.UDPTargetAddress, "udp-addr", config.DefaultUDPTargetAddress,
		"UDP meter frame target address")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", config.DefaultVerbosity,
		"Show verbose output")

	// Execute the CLI
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, nil, err
	}

	// Defaults
	if options.RecordOutputStream && options.OutputFile == "" {
		options.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") +
			"." + options.Format
	}

	return options, render, nil
}

// applyExplicitFlags copies flag values the user actually passed from src
// onto dst, preserving config-file values for everything else.
func applyExplicitFlags(cmd *cobra.Command, dst, src *config.Config) {
	flagTargets := map[string]func(){
		"input-device":        func() { dst.InputDeviceID = src.InputDeviceID },
		"output-device":       func() { dst.OutputDeviceID = src.OutputDeviceID },
		"channels":            func() { dst.Channels = src.Channels },
		"side-chain-channels": func() { dst.SideChainChannels = src.SideChainChannels },
		"sample-rate":         func() { dst.SampleRate = src.SampleRate },
		"frames-per-buffer":   func() { dst.FramesPerBuffer = src.FramesPerBuffer },
		"low-latency":         func() { dst.LowLatency = src.LowLatency },
		"gain":                func() { dst.GainDB = src.GainDB },
		"side-chain-gain":     func() { dst.SideChainGainDB = src.SideChainGainDB },
		"record":              func() { dst.RecordOutputStream = src.RecordOutputStream },
		"output":              func() { dst.OutputFile = src.OutputFile },
		"session":             func() { dst.SessionFile = src.SessionFile },
		"ws":                  func() { dst.WSEnabled = src.WSEnabled },
		"ws-addr":             func() { dst.WSAddr = src.WSAddr },
		"udp":                 func() { dst.UDPEnabled = src.UDPEnabled },
		"udp-addr":            func() { dst.UDPTargetAddress = src.UDPTargetAddress },
		"verbose":             func() { dst.Verbose = src.Verbose },
	}
	for name, apply := range flagTargets {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
}
