// Package codec serializes snapshots for the persistent stores.
//
// A snapshot is written as one gob record wrapped in a parallel gzip
// stream. The record carries a format number so older readers refuse
// layouts they do not understand instead of misreading them.
package codec

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/opencontainers/go-digest"

	"github.com/botirk38/podcastsim/similarity"
	"github.com/botirk38/podcastsim/types"
)

// FormatVersion is the layout written by Encode.
const FormatVersion = 1

// ErrUnsupportedFormat indicates a record written with an unknown layout
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

type record struct {
	Format     int
	Version    string
	IDs        []string
	Vocabulary []string
	NTFS       []float64
	JTS        []float64
	WTDS       []float64
	BuiltAt    time.Time
}

// Encode writes s to w.
func Encode(w io.Writer, s *types.Snapshot) error {
	if s == nil {
		return types.ErrNoSnapshot
	}

	zw := pgzip.NewWriter(w)
	rec := record{
		Format:     FormatVersion,
		Version:    s.Version.String(),
		IDs:        s.IDs,
		Vocabulary: s.Vocabulary,
		NTFS:       s.NTFS.RawData(),
		JTS:        s.JTS.RawData(),
		WTDS:       s.WTDS.RawData(),
		BuiltAt:    s.BuiltAt,
	}
	if err := gob.NewEncoder(zw).Encode(&rec); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	return nil
}

// Decode reads one snapshot from r and checks that its shapes agree.
func Decode(r io.Reader) (*types.Snapshot, error) {
	zr, err := pgzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot stream: %w", err)
	}
	defer zr.Close()

	var rec record
	if err := gob.NewDecoder(zr).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if rec.Format != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, rec.Format)
	}

	version := digest.Digest(rec.Version)
	if err := version.Validate(); err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", types.ErrMalformedSnapshot, rec.Version, err)
	}

	n := len(rec.IDs)
	var m similarity.Matrices
	for _, field := range []struct {
		name string
		data []float64
		dst  **similarity.Matrix
	}{
		{"ntfs", rec.NTFS, &m.NTFS},
		{"jts", rec.JTS, &m.JTS},
		{"wtds", rec.WTDS, &m.WTDS},
	} {
		mat, err := similarity.NewMatrixFrom(n, field.data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedSnapshot, field.name, err)
		}
		*field.dst = mat
	}

	return types.NewSnapshot(version, rec.IDs, rec.Vocabulary, &m, rec.BuiltAt)
}

// Marshal encodes s into a byte slice.
func Marshal(s *types.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot produced by Marshal.
func Unmarshal(data []byte) (*types.Snapshot, error) {
	return Decode(bytes.NewReader(data))
}
