// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"scope/internal/config"
)

// ParseArgs loads the configuration, applies command line overrides and
// returns the result with Command set to the selected subcommand. A nil
// config with nil error means help was shown and nothing should run.
func ParseArgs() (*config.Config, error) {
	var (
		cfg        *config.Config
		configPath string

		deviceID     int
		sampleRate   float64
		recordLength int
		window       string
		mathMode     string
	)

	rootCmd := &cobra.Command{
		Use:           "scope",
		Short:         "Oscilloscope waveform post-processing engine",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Command line wins over file and environment.
			if cmd.Flags().Changed("device") {
				loaded.Acquire.InputDevice = deviceID
			}
			if cmd.Flags().Changed("sample-rate") {
				loaded.Acquire.SampleRate = sampleRate
			}
			if cmd.Flags().Changed("record-length") {
				loaded.Acquire.RecordLength = recordLength
			}
			if cmd.Flags().Changed("window") {
				loaded.Spectrum.Window = window
			}
			if cmd.Flags().Changed("math-mode") {
				loaded.Scope.MathMode = mathMode
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file")
	rootCmd.PersistentFlags().IntVarP(&deviceID, "device", "d", config.DefaultDeviceID,
		"Capture device ID. Use the 'list' command to see available devices.")
	rootCmd.PersistentFlags().Float64VarP(&sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&recordLength, "record-length", "r", config.DefaultRecordLength,
		"Samples per channel per acquisition cycle (power of two)")
	rootCmd.PersistentFlags().StringVarP(&window, "window", "w", config.DefaultWindow,
		"Spectrum window function (hann, hamming, blackman, ...)")
	rootCmd.PersistentFlags().StringVarP(&mathMode, "math-mode", "m", config.DefaultMathMode,
		"Math channel mode (add, ch1-ch2, ch2-ch1)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Run the post-processing pipeline over a WAV record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "analyze"
			cfg.AnalyzeFile = args[0]
			return nil
		},
	}
	rootCmd.AddCommand(analyzeCmd)

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Process live records from the capture device",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "capture"
			return nil
		},
	}
	rootCmd.AddCommand(captureCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "list"
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return cfg, nil
}
