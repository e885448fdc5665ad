package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	transcription "github.com/angangwa/azure-speech-to-text/core"
	"github.com/angangwa/azure-speech-to-text/core/audio/miniaudio"
	"github.com/angangwa/azure-speech-to-text/core/audio/portaudio"
	"github.com/angangwa/azure-speech-to-text/core/transcribe"
	"github.com/angangwa/azure-speech-to-text/core/transcribe/realtime"
)

// portaudioFramesPerBuffer is 100ms of audio at the default capture rate.
const portaudioFramesPerBuffer = 2400

var logger *log.Logger

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(liveCmd)

	rootCmd.PersistentFlags().
		String("provider", "azure", "Realtime endpoint variant (azure or openai)")
	rootCmd.PersistentFlags().
		String("model", transcribe.ModelGPT4oTranscribe, "Transcription model")
	rootCmd.PersistentFlags().
		String("api-key", "", "API key (falls back to the provider's environment variables)")
	rootCmd.PersistentFlags().String("endpoint", "", "Azure resource endpoint")
	rootCmd.PersistentFlags().String("deployment", "", "Azure deployment id")

	liveCmd.Flags().
		Duration("max-duration", 60*time.Second, "End the session after this long")
	liveCmd.Flags().
		String("noise-reduction", "none", "Input noise reduction (none, near_field or far_field)")
	liveCmd.Flags().
		Float64("vad-threshold", 0.5, "Server voice activity detection threshold in [0, 1]")
	liveCmd.Flags().
		Bool("confidence", true, "Request per-token confidence scores")
	liveCmd.Flags().
		Duration("drain-timeout", 2*time.Second, "How long to wait for trailing transcripts after the session ends")
	liveCmd.Flags().
		String("source", "miniaudio", "Microphone backend (miniaudio, portaudio or none)")

	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("deployment", rootCmd.PersistentFlags().Lookup("deployment"))
	viper.BindPFlag("max_duration", liveCmd.Flags().Lookup("max-duration"))
	viper.BindPFlag("noise_reduction", liveCmd.Flags().Lookup("noise-reduction"))
	viper.BindPFlag("vad_threshold", liveCmd.Flags().Lookup("vad-threshold"))
	viper.BindPFlag("confidence", liveCmd.Flags().Lookup("confidence"))
	viper.BindPFlag("drain_timeout", liveCmd.Flags().Lookup("drain-timeout"))
	viper.BindPFlag("source", liveCmd.Flags().Lookup("source"))
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Printf("Error reading config file: %s\n", err)
		}
	}

	logger = log.New(os.Stderr)
}

var rootCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Stream microphone audio to a realtime transcription endpoint",
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Transcribe the microphone live with a terminal UI",
	Long:  `Live captures microphone audio, streams it to the configured realtime transcription endpoint and renders partial and completed transcripts as they arrive.`,
	Run:   runLive,
}

func runLive(cmd *cobra.Command, args []string) {
	opts := []transcription.ControllerOption{
		transcription.WithDrainTimeout(viper.GetDuration("drain_timeout")),
		transcription.WithCredentials(realtime.Credentials{
			APIKey:     viper.GetString("api_key"),
			Endpoint:   viper.GetString("endpoint"),
			Deployment: viper.GetString("deployment"),
		}),
	}

	switch backend := viper.GetString("source"); backend {
	case "miniaudio":
		client, err := miniaudio.NewClient()
		if err != nil {
			logger.Fatal("open microphone", "backend", backend, "error", err.Error())
		}
		opts = append(opts, transcription.WithAudioSource(client))
	case "portaudio":
		client, err := portaudio.NewClient(portaudioFramesPerBuffer)
		if err != nil {
			logger.Fatal("open microphone", "backend", backend, "error", err.Error())
		}
		opts = append(opts, transcription.WithAudioSource(client))
	case "none":
	default:
		logger.Fatal("unknown audio source", "source", backend)
	}

	controller := transcription.NewController(opts...)
	defer controller.Close()

	session, err := controller.Start(context.Background(),
		transcription.WithSessionOptions(
			transcribe.WithProvider(transcribe.Provider(viper.GetString("provider"))),
			transcribe.WithModel(viper.GetString("model")),
			transcribe.WithMaxDuration(viper.GetDuration("max_duration")),
			transcribe.WithNoiseReduction(transcribe.NoiseReduction(viper.GetString("noise_reduction"))),
			transcribe.WithVADThreshold(viper.GetFloat64("vad_threshold")),
			transcribe.WithConfidence(viper.GetBool("confidence")),
		),
	)
	if err != nil {
		logger.Fatal("start transcription session", "error", err.Error())
	}

	p := tea.NewProgram(initialModel(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Fatal("run UI", "error", err.Error())
	}

	snapshot := session.Snapshot()
	for _, turn := range snapshot.Turns {
		fmt.Println(turn.Text)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
