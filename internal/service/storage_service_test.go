package service

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0}
)

func TestSniffAvatar_DetectsFromBytes(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		wantType string
		wantExt  string
	}{
		{"png", append(pngHeader, bytes.Repeat([]byte{0x00}, 64)...), "image/png", "png"},
		{"jpeg", append(jpegHeader, bytes.Repeat([]byte{0x00}, 64)...), "image/jpeg", "jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, ext, stream, err := sniffAvatar(bytes.NewReader(tt.payload))
			if err != nil {
				t.Fatalf("sniffAvatar returned error: %v", err)
			}
			if contentType != tt.wantType || ext != tt.wantExt {
				t.Fatalf("detected %s/%s, want %s/%s", contentType, ext, tt.wantType, tt.wantExt)
			}

			// The sniffed prefix is stitched back onto the stream.
			all, err := io.ReadAll(stream)
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			if !bytes.Equal(all, tt.payload) {
				t.Fatalf("stream lost bytes: got %d, want %d", len(all), len(tt.payload))
			}
		})
	}
}

func TestSniffAvatar_RejectsNonImagePayloads(t *testing.T) {
	webp := append([]byte("RIFF"), 0x24, 0x00, 0x00, 0x00)
	webp = append(webp, []byte("WEBPVP8 ")...)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"plain text", []byte("definitely not an image")},
		{"pdf", []byte("%PDF-1.7 fake document")},
		{"webp", webp},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := sniffAvatar(bytes.NewReader(tt.payload))
			if !errors.Is(err, ErrUnsupportedAvatarType) {
				t.Fatalf("expected ErrUnsupportedAvatarType, got %v", err)
			}
		})
	}
}

func TestSniffAvatar_IgnoresDeclaredName(t *testing.T) {
	// A text payload stays rejected no matter what the caller claims
	// about it; only the bytes decide.
	payload := strings.NewReader("<script>alert(1)</script>" + strings.Repeat(" ", 600))
	_, _, _, err := sniffAvatar(payload)
	if !errors.Is(err, ErrUnsupportedAvatarType) {
		t.Fatalf("expected ErrUnsupportedAvatarType, got %v", err)
	}
}
