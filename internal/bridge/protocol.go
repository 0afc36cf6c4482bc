// Package bridge serves the phone sensor pad: an HTTP page that streams
// device motion, microphone level and a mouth toggle over a websocket into
// the sensor hub.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types.
const (
	MsgHello   = "hello"
	MsgWelcome = "welcome"
	MsgMotion  = "motion"
	MsgAudio   = "audio"
	MsgFace    = "face"
)

// ProtocolVersion is the version the pad announces in its hello.
const ProtocolVersion = 1

// ErrBadEnvelope is returned for frames that are not a valid envelope.
var ErrBadEnvelope = errors.New("bridge: bad envelope")

// Envelope is the wire frame: a type tag plus a raw JSON payload.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

// Hello is the first message a pad sends.
type Hello struct {
	V    int    `json:"v"`
	Name string `json:"name,omitempty"`
}

// Welcome answers a hello.
type Welcome struct {
	Client string   `json:"client"`
	Feeds  []string `json:"feeds"`
	RateHz int      `json:"rateHz"`
}

// Encode wraps payload in an envelope of type t.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("%w: empty type", ErrBadEnvelope)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload for %q", ErrBadEnvelope, t)
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("bridge: encode %s: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: p})
}

// DecodeEnvelope parses one frame.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty frame", ErrBadEnvelope)
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrBadEnvelope)
	}
	return e, nil
}

// DecodePayload unmarshals the payload of env into T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("%w: empty payload for %q", ErrBadEnvelope, env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("%w: %s payload: %v", ErrBadEnvelope, env.T, err)
	}
	return out, nil
}
