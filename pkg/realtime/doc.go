// Package realtime implements the wire protocol of the conversational agent.
//
// It covers three concerns:
//
//   - Event types: the JSON event envelope exchanged over the data channel,
//     with a "type" discriminator for dispatch (ServerEvent) and builders for
//     the client-side events (user messages, response triggers, function
//     call outputs).
//
//   - Negotiation: a SessionClient that exchanges {instructions, voice} for a
//     short-lived session credential, and the SDP offer/answer exchange that
//     establishes the realtime connection.
//
//   - Transport: a WebRTC transport (data channel "oai-events" plus audio
//     tracks) and a WebSocket transport for environments without WebRTC.
//     Both funnel inbound messages to a single Handler and expose Send for
//     outbound events.
//
// Establishing a session:
//
//	sc := realtime.NewSessionClient("https://api.example.com")
//	token, err := sc.CreateSession(ctx, "You are a helpful assistant.", realtime.VoiceAlloy)
//	if err != nil {
//	    return err
//	}
//	t := realtime.NewWebRTCTransport(realtime.TransportConfig{
//	    Handler: dispatcher.Handle,
//	})
//	err = t.Connect(ctx, token)
//
// Sending events:
//
//	err = t.Send(realtime.UserMessageEvent("hello"))
//	err = t.Send(realtime.ResponseCreateEvent())
//
// Send fails with ErrNotReady while the data channel is not open; events are
// never queued for later delivery.
package realtime
