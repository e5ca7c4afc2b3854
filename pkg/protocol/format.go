package protocol

import "strings"

// Format selects how envelopes are framed for a client.
type Format int

const (
	// FormatJSON sends envelopes as JSON text frames. Browsers use this.
	FormatJSON Format = iota
	// FormatProto sends envelopes as binary google.protobuf.Struct frames.
	FormatProto
)

// String returns the query-string name of the format.
func (f Format) String() string {
	switch f {
	case FormatProto:
		return "proto"
	default:
		return "json"
	}
}

// ParseFormat maps a query-string value to a Format.
// Unknown or empty values fall back to FormatJSON.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "proto", "protobuf":
		return FormatProto
	default:
		return FormatJSON
	}
}

// Encode frames the envelope in this format.
func (f Format) Encode(e Envelope) ([]byte, error) {
	if f == FormatProto {
		return e.EncodeProto()
	}
	return e.EncodeJSON()
}

// Decode reads a frame written in this format.
func (f Format) Decode(data []byte) (Envelope, error) {
	var e Envelope
	var err error
	if f == FormatProto {
		err = e.DecodeProto(data)
	} else {
		err = e.DecodeJSON(data)
	}
	return e, err
}
