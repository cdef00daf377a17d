package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// HandlerID is the completion token the native side allocates for one
// asynchronous call. It is round-tripped verbatim and never interpreted here.
type HandlerID int64

func (h HandlerID) String() string {
	return strconv.FormatInt(int64(h), 10)
}

func ParseHandlerID(s string) (HandlerID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return HandlerID(v), nil
}

// Payload carries operation specific data. Values must be JSON compatible.
type Payload map[string]any

// Clone returns a shallow copy so callers can keep mutating their map.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// DecodePayload parses a JSON object. Numbers are kept as json.Number so
// 64-bit ids survive a round trip unchanged.
func DecodePayload(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("payload: trailing data after object")
	}
	return p, nil
}

// String returns the string stored under key, if any.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

type DeviceInfo struct {
	ID        string `json:"id"`
	OSName    string `json:"osname"`
	OSVersion string `json:"osversion"`
	Model     string `json:"model"`
	Version   string `json:"version"`
}

// DeviceInfoVersion is the schema version reported in DeviceInfo.Version.
const DeviceInfoVersion = "1"
