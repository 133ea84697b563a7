// Package cmd implements the command-line interface for nagare.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/invopop/jsonschema"
	"github.com/muesli/reflow/wordwrap"
	"github.com/nagare-player/nagare/color"
	"github.com/nagare-player/nagare/engine"
	"github.com/nagare-player/nagare/filesystem"
	"github.com/nagare-player/nagare/icon"
	"github.com/nagare-player/nagare/key"
	"github.com/nagare-player/nagare/media"
	"github.com/nagare-player/nagare/playback"
	"github.com/nagare-player/nagare/resolve"
	"github.com/nagare-player/nagare/state"
	"github.com/nagare-player/nagare/style"
	"github.com/nagare-player/nagare/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("options", "o", "", "Play options as a JSON document (prefix with @ to read from a file)")
	playCmd.Flags().Bool("options-schema", false, "Print the JSON schema of the play options document and exit")
	playCmd.Flags().IntP("audio", "a", -1, "Select the audio stream with the given declared index")
	playCmd.Flags().IntP("subtitle", "t", -1, "Select the subtitle stream with the given declared index")
	playCmd.Flags().Int64("start", 0, "Start position in seconds")
	playCmd.Flags().Bool("raw-stream", false, "Start on the raw-stream pipeline instead of the managed-source one")
	playCmd.Flags().BoolP("choose", "C", false, "Interactively choose audio and subtitle streams before playback starts")

	playCmd.Flags().BoolP("fullscreen", "f", false, "Start playback in fullscreen")
	lo.Must0(viper.BindPFlag(key.PlayerFullscreen, playCmd.Flags().Lookup("fullscreen")))

	playCmd.SetOut(os.Stdout)
}

// playCmd starts a playback session for a URL or a declared media source.
var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Play a URL or a media source declared through --options",
	Example: `  nagare play http://example.org/video.mkv
  nagare play --options @options.json --audio 2
  nagare play --options-schema`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("options-schema")) {
			schema := jsonschema.Reflect(&media.PlayOptions{})
			encoded := lo.Must(json.MarshalIndent(schema, "", "  "))
			cmd.Println(string(encoded))
			return
		}

		opts, err := parsePlayOptions(cmd, args)
		handleErr(err)

		CheckDependencies()

		var resolver playback.Resolver
		if r, rerr := resolve.New(); rerr == nil {
			resolver = r
		}

		mode := engine.ParseMode(viper.GetString(key.EnginePipeline))
		if lo.Must(cmd.Flags().GetBool("raw-stream")) {
			mode = engine.ModeRawStream
		}

		factory := engine.MPVFactory(viper.GetString(key.EngineBinary))
		session := playback.NewSession(factory, mode, resolver, state.Store{})

		if viper.GetBool(key.CliShowStreams) && len(opts.Source.MediaStreams) > 0 {
			printStreams(cmd, opts.Source.MediaStreams)
		}

		ended := make(chan struct{})
		wireBus(cmd, session, ended)

		handleErr(session.Play(opts))

		// The CLI is the host surface; acknowledge the session right away.
		session.Bus().Emit(playback.EventActivePlayer, playback.Payload{})

		applySelections(cmd, session, opts)

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

		select {
		case <-ended:
		case <-interrupt:
		}

		handleErr(session.Stop(true))
	},
}

// parsePlayOptions merges the --options document, the positional URL and the
// transport flags into the final play options.
func parsePlayOptions(cmd *cobra.Command, args []string) (media.PlayOptions, error) {
	var opts media.PlayOptions

	if raw := lo.Must(cmd.Flags().GetString("options")); raw != "" {
		document := []byte(raw)
		if strings.HasPrefix(raw, "@") {
			content, err := filesystem.API().ReadFile(strings.TrimPrefix(raw, "@"))
			if err != nil {
				return opts, fmt.Errorf("read options file: %w", err)
			}
			document = content
		}

		if err := json.Unmarshal(document, &opts); err != nil {
			return opts, fmt.Errorf("parse options document: %w", err)
		}
	}

	if len(args) == 1 {
		opts.URL = args[0]
	}

	if opts.URL == "" && opts.Source.ID == "" && opts.Source.Path == "" {
		return opts, errors.New("nothing to play: pass a url argument or a source through --options")
	}

	opts.Fullscreen = viper.GetBool(key.PlayerFullscreen)

	if start := lo.Must(cmd.Flags().GetInt64("start")); start > 0 {
		opts.StartPositionTicks = start * media.TicksPerSecond
	}

	// Resume from the persisted position unless an explicit start was given.
	if opts.StartPositionTicks == 0 && opts.Item.ID != "" {
		if ticks, ok := state.Resume(opts.Item.ID); ok {
			opts.StartPositionTicks = ticks
		}
	}

	return opts, nil
}

// wireBus attaches terminal feedback to the session's lifecycle events and
// closes ended when the source finishes.
func wireBus(cmd *cobra.Command, session *playback.Session, ended chan struct{}) {
	bus := session.Bus()

	bus.On(playback.EventItemStarted, func(p playback.Payload) {
		name := "stream"
		if p.Item != nil && p.Item.Name != "" {
			name = p.Item.Name
		}
		cmd.Printf("%s Playing %s\n", icon.Get(icon.Play), style.Bold(name))
	})

	bus.On(playback.EventPipelineChange, func(p playback.Payload) {
		cmd.Printf("%s Switched to the %s pipeline\n",
			icon.Get(icon.Progress), style.Fg(color.Yellow)(p.Message))
	})

	bus.On(playback.EventError, func(p playback.Payload) {
		cmd.Printf("%s %s\n", icon.Get(icon.Fail), p.Message)
	})

	bus.On(playback.EventEnded, func(playback.Payload) {
		close(ended)
	})
}

// applySelections issues the stream selections requested through flags or
// the interactive picker.
func applySelections(cmd *cobra.Command, session *playback.Session, opts media.PlayOptions) {
	if audio := lo.Must(cmd.Flags().GetInt("audio")); audio >= 0 {
		handleErr(session.SetAudioStreamIndex(audio))
	}
	if subtitle := cmd.Flags().Lookup("subtitle"); subtitle.Changed {
		handleErr(session.SetSubtitleStreamIndex(lo.Must(cmd.Flags().GetInt("subtitle"))))
	}

	if lo.Must(cmd.Flags().GetBool("choose")) {
		chooseStreams(session, opts.Source.MediaStreams)
	}
}

// chooseStreams runs the interactive audio and subtitle pickers.
func chooseStreams(session *playback.Session, streams []media.Stream) {
	pick := func(t media.StreamType, none string) (int, bool) {
		declared := lo.Filter(streams, func(s media.Stream, _ int) bool {
			return s.Is(t)
		})
		if len(declared) == 0 {
			return 0, false
		}

		options := lo.Map(declared, func(s media.Stream, _ int) string {
			return describeStream(s)
		})
		if none != "" {
			options = append(options, none)
		}

		var answer string
		err := survey.AskOne(&survey.Select{
			Message: fmt.Sprintf("%s stream", t),
			Options: options,
		}, &answer)
		if err != nil {
			return 0, false
		}

		position := lo.IndexOf(options, answer)
		if position < 0 || position >= len(declared) {
			return -1, none != ""
		}
		return declared[position].Index, true
	}

	if index, ok := pick(media.StreamAudio, ""); ok {
		handleErr(session.SetAudioStreamIndex(index))
	}
	if index, ok := pick(media.StreamSubtitle, "None"); ok {
		handleErr(session.SetSubtitleStreamIndex(index))
	}
}

// printStreams lists the declared streams of the source before playback.
func printStreams(cmd *cobra.Command, streams []media.Stream) {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		width = 80
	}

	for _, s := range streams {
		var symbol string
		switch {
		case s.Is(media.StreamAudio):
			symbol = icon.Get(icon.Audio)
		case s.Is(media.StreamSubtitle):
			symbol = icon.Get(icon.Subtitle)
		default:
			continue
		}

		line := fmt.Sprintf("%s #%d %s", symbol, s.Index, describeStream(s))
		cmd.Println(wordwrap.String(line, width))
	}
}

func describeStream(s media.Stream) string {
	parts := make([]string, 0, 4)
	if s.DisplayTitle != "" {
		parts = append(parts, s.DisplayTitle)
	}
	if s.Language != "" {
		parts = append(parts, s.Language)
	}
	if s.Codec != "" {
		parts = append(parts, style.Faint(s.Codec))
	}
	if s.IsExternal {
		parts = append(parts, style.Faint("external"))
	}
	if len(parts) == 0 {
		parts = append(parts, string(s.Type))
	}
	return strings.Join(parts, " ")
}
