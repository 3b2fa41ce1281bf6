package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jarod-johnson-23/audiobot/pkg/audio/pcm"
	"github.com/jarod-johnson-23/audiobot/pkg/audio/player"
	"github.com/jarod-johnson-23/audiobot/pkg/audio/resampler"
	"github.com/jarod-johnson-23/audiobot/pkg/realtime"
	"github.com/jarod-johnson-23/audiobot/pkg/search"
	"github.com/jarod-johnson-23/audiobot/pkg/session"
	"github.com/jarod-johnson-23/audiobot/pkg/transcript"
)

var (
	runInstructions string
	runVoice        string
	runAudioOut     string
	runWebSocket    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a realtime session with the conversational agent",
	Long: `Start a realtime session and chat from the terminal.

Typed lines are sent as user messages. Commands:
  /mic      toggle the microphone gate
  /show     print the transcript
  /restart  re-apply the session settings (archives the transcript)
  /quit     exit

With --audio-out the agent's audio is written as 48kHz stereo pcm16.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInstructions, "instructions", "", "assistant instructions (overrides config)")
	runCmd.Flags().StringVar(&runVoice, "voice", "", "assistant voice (overrides config)")
	runCmd.Flags().StringVar(&runAudioOut, "audio-out", "", "write agent audio to this file (pcm16)")
	runCmd.Flags().BoolVar(&runWebSocket, "websocket", false, "use the WebSocket transport instead of WebRTC")
	rootCmd.AddCommand(runCmd)
}

// Transcript rendering styles.
var (
	styleSystem    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681")).Italic(true)
	styleUser      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f")).Bold(true)
	styleAssistant = lipgloss.NewStyle().Foreground(lipgloss.Color("#79c0ff"))
	styleFunction  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d2a8ff"))
	styleOld       = lipgloss.NewStyle().Faint(true)
)

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is not configured")
	}
	if runInstructions != "" {
		cfg.Session.Instructions = runInstructions
	}
	if runVoice != "" {
		cfg.Session.Voice = runVoice
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink, cleanup, err := buildSink()
	if err != nil {
		return err
	}
	defer cleanup()

	store := transcript.NewStore()
	p := player.New(player.PCM16Decoder(pcm.L16Mono24K), sink)
	tokens := realtime.NewSessionClient(cfg.API.BaseURL)
	searcher := search.NewClient(cfg.API.BaseURL)

	mgr := session.NewManager(session.ManagerConfig{
		Store:  store,
		Player: p,
		Tokens: tokens,
		Search: searcher,
		NewTransport: func(h realtime.Handler) session.Transport {
			if runWebSocket {
				return realtime.NewWebSocketTransport(realtime.WebSocketConfig{
					URL:     strings.Replace(cfg.Realtime.BaseURL, "https://", "wss://", 1),
					Model:   cfg.Realtime.Model,
					Handler: h,
				})
			}
			return realtime.NewWebRTCTransport(realtime.TransportConfig{
				RealtimeURL: cfg.Realtime.BaseURL,
				Model:       cfg.Realtime.Model,
				Handler:     h,
			})
		},
	})
	defer mgr.Close()

	mgr.OnStatusChange(func(st session.Status) {
		fmt.Println(styleSystem.Render("· session " + st.String()))
		if st == session.StatusReady {
			installSearchTool(mgr)
		}
	})

	sessionCfg := session.Config{
		Instructions: cfg.Session.Instructions,
		Voice:        cfg.Session.Voice,
	}
	go mgr.Start(ctx, sessionCfg)

	recording := false
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/mic":
			recording = !recording
			mgr.SetRecording(recording)
		case line == "/show":
			printTranscript(store)
		case line == "/restart":
			go mgr.Start(ctx, sessionCfg)
		default:
			if err := mgr.SendUserMessage(line); err != nil {
				if errors.Is(err, realtime.ErrNotReady) {
					fmt.Println(styleSystem.Render("· not connected, message dropped"))
					continue
				}
				return err
			}
		}
	}
	return scanner.Err()
}

// buildSink returns the playback sink: a resampled file writer with
// --audio-out, otherwise a discard sink.
func buildSink() (pcm.Writer, func(), error) {
	if runAudioOut == "" {
		return pcm.Discard, func() {}, nil
	}

	f, err := os.Create(runAudioOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create audio output: %w", err)
	}
	w, err := resampler.NewWriter(pcm.IOWriter(f), pcm.L16Mono24K, pcm.L16Stereo48K)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return w, func() { f.Close() }, nil
}

// installSearchTool announces the search function to the agent.
func installSearchTool(mgr *session.Manager) {
	tool, err := search.Tool()
	if err != nil {
		fmt.Println(styleSystem.Render("· failed to build search tool: " + err.Error()))
		return
	}
	event := realtime.SessionUpdateEvent(&realtime.SessionConfig{
		Tools:      []realtime.Tool{tool},
		ToolChoice: "auto",
	})
	if err := mgr.Send(event); err != nil {
		fmt.Println(styleSystem.Render("· failed to install search tool: " + err.Error()))
	}
}

// printTranscript renders the transcript: archived messages first, dimmed.
func printTranscript(store *transcript.Store) {
	for _, msg := range store.Messages() {
		var style lipgloss.Style
		switch msg.Role {
		case transcript.RoleSystem:
			style = styleSystem
		case transcript.RoleUser:
			style = styleUser
		case transcript.RoleFunction:
			style = styleFunction
		default:
			style = styleAssistant
		}

		line := fmt.Sprintf("%-9s %s", msg.Role, strings.TrimRight(msg.Text, "\n"))
		if msg.Old {
			line = styleOld.Render(line)
		} else {
			line = style.Render(line)
		}
		fmt.Println(line)
	}
}
