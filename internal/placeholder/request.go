package placeholder

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRequest is matched by malformed tool or HTTP requests.
var ErrInvalidRequest = errors.New("invalid request")

// SourceSpec is the wire form of a Source. Exactly one of Src and DataBase64
// must be set. In JSON it may also be given as a bare location string.
type SourceSpec struct {
	Src        string `json:"src,omitempty"`
	DataBase64 string `json:"data_base64,omitempty"`
	Name       string `json:"name,omitempty"`
}

// UnmarshalJSON accepts either an object or a plain location string.
func (s *SourceSpec) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) > 0 && b[0] == '"' {
		var loc string
		if err := json.Unmarshal(b, &loc); err != nil {
			return err
		}
		*s = SourceSpec{Src: loc}
		return nil
	}
	type plain SourceSpec
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = SourceSpec(p)
	return nil
}

// Source validates the source fields and converts them.
func (s SourceSpec) Source() (Source, error) {
	switch {
	case s.Src != "" && s.DataBase64 != "":
		return Source{}, fmt.Errorf("%w: src and data_base64 are mutually exclusive", ErrInvalidRequest)
	case s.Src != "":
		return Source{Location: s.Src, Name: s.Name}, nil
	case s.DataBase64 != "":
		data, err := base64.StdEncoding.DecodeString(s.DataBase64)
		if err != nil {
			return Source{}, fmt.Errorf("%w: data_base64: %v", ErrInvalidRequest, err)
		}
		return Source{Data: data, Name: s.Name}, nil
	default:
		return Source{}, fmt.Errorf("%w: src or data_base64 is required", ErrInvalidRequest)
	}
}

// Request asks for one placeholder.
type Request struct {
	Src        string  `json:"src,omitempty"`
	DataBase64 string  `json:"data_base64,omitempty"`
	Name       string  `json:"name,omitempty"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Quality    float64 `json:"quality,omitempty"`
}

// Source validates and converts the requested source.
func (r Request) Source() (Source, error) {
	return SourceSpec{Src: r.Src, DataBase64: r.DataBase64, Name: r.Name}.Source()
}

// Options returns the requested rendition; unset fields stay zero.
func (r Request) Options() Options {
	return Options{Width: r.Width, Height: r.Height, Quality: r.Quality}
}

// BatchRequest asks for placeholders of several sources rendered alike.
type BatchRequest struct {
	Sources []SourceSpec `json:"sources"`
	Width   int          `json:"width,omitempty"`
	Height  int          `json:"height,omitempty"`
	Quality float64      `json:"quality,omitempty"`
}

// Resolve converts every source. The first invalid entry fails the request.
func (r BatchRequest) Resolve() ([]Source, Options, error) {
	sources := make([]Source, 0, len(r.Sources))
	for i, ss := range r.Sources {
		src, err := ss.Source()
		if err != nil {
			return nil, Options{}, fmt.Errorf("sources[%d]: %w", i, err)
		}
		sources = append(sources, src)
	}
	return sources, Options{Width: r.Width, Height: r.Height, Quality: r.Quality}, nil
}
