package cairo

import (
	"bytes"
	"reflect"

	"github.com/wippyai/cairobind/errors"
)

// Filename is a path given either as text or as raw bytes.
type Filename interface {
	~string | ~[]byte
}

// FilePath is a filename captured by File.
type FilePath struct {
	name string
	text bool
}

// File captures name for a file-based entry point. Text names are encoded
// with the binding's filename encoding; byte names are passed unchanged.
func File[F Filename](name F) FilePath {
	return FilePath{
		name: string(name),
		text: reflect.TypeFor[F]().Kind() == reflect.String,
	}
}

// String returns the name as given.
func (p FilePath) String() string { return p.name }

// encode returns the bytes handed to the engine.
func (b *Binding) encode(p FilePath) ([]byte, error) {
	raw := []byte(p.name)
	if p.text && b.enc != nil {
		enc, err := b.enc.NewEncoder().Bytes(raw)
		if err != nil {
			return nil, errors.New(errors.PhaseWrap, errors.KindInvalidInput).
				Detail("encode filename %q", p.name).
				Cause(err).
				Build()
		}
		raw = enc
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return nil, errors.InvalidInput(errors.PhaseWrap, "filename contains NUL")
	}
	return raw, nil
}
