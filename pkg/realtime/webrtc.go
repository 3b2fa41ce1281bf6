package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"
)

// Handler consumes inbound server events. It is the single ingress for
// protocol effects: the transport calls it once per wire message, in arrival
// order.
type Handler func(*ServerEvent)

// CaptureSource supplies encoded microphone samples for the local audio
// track. ReadSample blocks until the next sample is available and returns an
// error once the source is exhausted.
type CaptureSource interface {
	ReadSample() (media.Sample, error)
}

// RemoteAudioSink receives RTP packets from the agent's audio track.
type RemoteAudioSink func(pkt *rtp.Packet)

// TransportConfig configures a transport.
type TransportConfig struct {
	// RealtimeURL is the SDP exchange endpoint. Default: DefaultRealtimeURL.
	RealtimeURL string

	// Model selects the agent model for the exchange. Default: DefaultModel.
	Model string

	// HTTPClient is used for the SDP exchange. Default: http.DefaultClient.
	HTTPClient *http.Client

	// Handler receives every parsed inbound event. Required.
	Handler Handler

	// Capture supplies microphone samples. Optional; without it the
	// connection is receive-only.
	Capture CaptureSource

	// RemoteAudio receives the agent's media-track packets. Optional.
	RemoteAudio RemoteAudioSink

	// OnOpen is called when the data channel opens.
	OnOpen func()

	// OnClose is called when the data channel closes.
	OnClose func()
}

// WebRTCTransport owns one realtime connection: the peer connection, the
// "oai-events" data channel and the audio tracks. A transport connects once;
// session restarts build a fresh transport.
type WebRTCTransport struct {
	cfg TransportConfig

	mu         sync.Mutex
	pc         *webrtc.PeerConnection
	dc         *webrtc.DataChannel
	localTrack *webrtc.TrackLocalStaticSample

	open      atomic.Bool
	recording atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
}

// NewWebRTCTransport creates an unconnected transport.
func NewWebRTCTransport(cfg TransportConfig) *WebRTCTransport {
	if cfg.RealtimeURL == "" {
		cfg.RealtimeURL = DefaultRealtimeURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &WebRTCTransport{
		cfg:    cfg,
		closed: make(chan struct{}),
	}
}

// Connect negotiates the realtime connection using the session credential:
// it acquires the capture track (disabled), creates the data channel, builds
// an SDP offer, posts it to the realtime endpoint and applies the answer.
// A failed negotiation leaves the transport closed; it is not retried here.
func (t *WebRTCTransport) Connect(ctx context.Context, credential string) error {
	t.mu.Lock()
	if t.pc != nil {
		t.mu.Unlock()
		return fmt.Errorf("realtime: transport already connected")
	}
	t.mu.Unlock()

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create peer connection: %w", err)
	}

	// Receive-only transceiver for the agent's audio.
	_, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	})
	if err != nil {
		pc.Close()
		return fmt.Errorf("failed to add audio transceiver: %w", err)
	}

	// Local capture track. It lives for the whole connection; SetRecording
	// gates whether samples actually flow into it.
	var localTrack *webrtc.TrackLocalStaticSample
	if t.cfg.Capture != nil {
		localTrack, err = webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
			"audio",
			"audiobot-mic",
		)
		if err != nil {
			pc.Close()
			return fmt.Errorf("failed to create capture track: %w", err)
		}
		if _, err := pc.AddTrack(localTrack); err != nil {
			pc.Close()
			return fmt.Errorf("failed to add capture track: %w", err)
		}
	}

	dc, err := pc.CreateDataChannel("oai-events", nil)
	if err != nil {
		pc.Close()
		return fmt.Errorf("failed to create data channel: %w", err)
	}

	dc.OnOpen(func() {
		slog.Debug("data channel opened")
		t.open.Store(true)
		if t.cfg.OnOpen != nil {
			t.cfg.OnOpen()
		}
	})

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		event, err := parseEvent(msg.Data)
		if err != nil {
			slog.Error("failed to parse inbound event", "error", err)
			return
		}
		t.cfg.Handler(event)
	})

	dc.OnClose(func() {
		slog.Debug("data channel closed")
		t.open.Store(false)
		if t.cfg.OnClose != nil {
			t.cfg.OnClose()
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		slog.Debug("received remote track", "kind", track.Kind(), "codec", track.Codec().MimeType)
		if track.Kind() == webrtc.RTPCodecTypeAudio {
			go t.readRemoteTrack(track)
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return fmt.Errorf("failed to create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return fmt.Errorf("failed to set local description: %w", err)
	}

	// Wait for ICE gathering so the offer carries all candidates.
	<-webrtc.GatheringCompletePromise(pc)

	answer, err := exchangeSDP(ctx, t.cfg.HTTPClient, t.cfg.RealtimeURL, t.cfg.Model, credential, pc.LocalDescription().SDP)
	if err != nil {
		pc.Close()
		return fmt.Errorf("failed to exchange SDP: %w", err)
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		pc.Close()
		return fmt.Errorf("failed to set remote description: %w", err)
	}

	t.mu.Lock()
	t.pc = pc
	t.dc = dc
	t.localTrack = localTrack
	t.mu.Unlock()

	if t.cfg.Capture != nil {
		go t.pumpCapture(localTrack)
	}

	return nil
}

// Send marshals the event and writes it to the data channel. It fails with
// ErrNotReady while the channel is not open; the event is dropped, not
// queued.
func (t *WebRTCTransport) Send(event interface{}) error {
	t.mu.Lock()
	dc := t.dc
	t.mu.Unlock()

	if dc == nil || !t.open.Load() || dc.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrNotReady
	}

	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		str := string(jsonBytes)
		if len(str) > 500 {
			str = str[:500] + "..."
		}
		slog.Debug("sending event", "content", str)
	}

	return dc.Send(jsonBytes)
}

// SetRecording flips the microphone gate. The capture track itself is never
// added or removed mid-connection, so no renegotiation happens.
func (t *WebRTCTransport) SetRecording(enabled bool) {
	t.recording.Store(enabled)
	if enabled {
		slog.Info("microphone unmuted")
	} else {
		slog.Info("microphone muted")
	}
}

// Recording reports whether the microphone gate is open.
func (t *WebRTCTransport) Recording() bool {
	return t.recording.Load()
}

// Close releases the data channel, the peer connection and the capture pump.
// It is idempotent and safe to call on a transport that never connected.
func (t *WebRTCTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		t.open.Store(false)

		t.mu.Lock()
		dc, pc := t.dc, t.pc
		t.dc, t.pc, t.localTrack = nil, nil, nil
		t.mu.Unlock()

		if dc != nil {
			dc.Close()
		}
		if pc != nil {
			err = pc.Close()
		}
	})
	return err
}

// pumpCapture moves samples from the capture source onto the local track
// while the recording gate is open. Samples captured while muted are
// discarded.
func (t *WebRTCTransport) pumpCapture(track *webrtc.TrackLocalStaticSample) {
	for {
		select {
		case <-t.closed:
			return
		default:
		}

		sample, err := t.cfg.Capture.ReadSample()
		if err != nil {
			slog.Debug("capture source ended", "error", err)
			return
		}
		if !t.recording.Load() {
			continue
		}
		if err := track.WriteSample(sample); err != nil {
			slog.Error("failed to write capture sample", "error", err)
			return
		}
	}
}

// readRemoteTrack drains RTP packets from the agent's media track and hands
// them to the configured sink.
func (t *WebRTCTransport) readRemoteTrack(track *webrtc.TrackRemote) {
	for {
		select {
		case <-t.closed:
			return
		default:
		}

		pkt, _, err := track.ReadRTP()
		if err != nil {
			slog.Debug("remote track ended", "error", err)
			return
		}
		if t.cfg.RemoteAudio != nil {
			t.cfg.RemoteAudio(pkt)
		}
	}
}

// parseEvent parses a raw JSON message into a ServerEvent.
func parseEvent(message []byte) (*ServerEvent, error) {
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		msgStr := string(message)
		if len(msgStr) > 1000 {
			msgStr = msgStr[:1000] + "..."
		}
		slog.Debug("received message", "len", len(message), "content", msgStr)
	}

	var event ServerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	event.Raw = message
	event.decodeAudio()

	return &event, nil
}
