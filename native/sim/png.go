package sim

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"os"

	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/status"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const maxPNGChunk = 1 << 28

var errCallback = stderrors.New("write callback failed")

// snapshot converts image surface pixels to a Go image. Caller holds the lock.
func (e *Engine) snapshot(s native.Handle) (image.Image, native.Status) {
	o, st := e.liveSurface(s, "write_to_png")
	if st != status.Success {
		return nil, st
	}
	if o.tag != int32(native.SurfaceTypeImage) || o.surface.data == nil {
		return nil, status.SurfaceTypeMismatch
	}
	sf := o.surface
	r := image.Rect(0, 0, sf.width, sf.height)

	switch sf.format {
	case native.FormatARGB32, native.FormatRGB24:
		img := image.NewNRGBA(r)
		for y := 0; y < sf.height; y++ {
			row := sf.data[y*sf.stride:]
			for x := 0; x < sf.width; x++ {
				p := binary.LittleEndian.Uint32(row[4*x:])
				a := uint8(p >> 24)
				if sf.format == native.FormatRGB24 {
					a = 0xff
				}
				img.SetNRGBA(x, y, unpremultiply(uint8(p>>16), uint8(p>>8), uint8(p), a))
			}
		}
		return img, status.Success
	case native.FormatA8:
		img := image.NewAlpha(r)
		for y := 0; y < sf.height; y++ {
			copy(img.Pix[y*img.Stride:], sf.data[y*sf.stride:y*sf.stride+sf.width])
		}
		return img, status.Success
	case native.FormatA1:
		img := image.NewAlpha(r)
		for y := 0; y < sf.height; y++ {
			row := sf.data[y*sf.stride:]
			for x := 0; x < sf.width; x++ {
				if row[x/8]&(1<<(x%8)) != 0 {
					img.Pix[y*img.Stride+x] = 0xff
				}
			}
		}
		return img, status.Success
	}
	return nil, status.InvalidFormat
}

func unpremultiply(r, g, b, a uint8) color.NRGBA {
	if a == 0 {
		return color.NRGBA{}
	}
	if a == 0xff {
		return color.NRGBA{R: r, G: g, B: b, A: a}
	}
	un := func(c uint8) uint8 { return uint8((uint32(c)*0xff + uint32(a)/2) / uint32(a)) }
	return color.NRGBA{R: un(r), G: un(g), B: un(b), A: a}
}

func premultiply(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	mul := func(v uint8) uint32 { return (uint32(v)*uint32(n.A) + 0x7f) / 0xff }
	return uint32(n.A)<<24 | mul(n.R)<<16 | mul(n.G)<<8 | mul(n.B)
}

type callbackWriter struct {
	write native.WriteFunc
	c     native.Closure
	st    native.Status
}

func (w *callbackWriter) Write(p []byte) (int, error) {
	if st := w.write(w.c, p); st != status.Success {
		w.st = st
		return 0, errCallback
	}
	return len(p), nil
}

// SurfaceWriteToPNG writes an image surface to a PNG file.
func (e *Engine) SurfaceWriteToPNG(s native.Handle, filename []byte) native.Status {
	e.mu.Lock()
	img, st := e.snapshot(s)
	e.mu.Unlock()
	if st != status.Success {
		return st
	}

	f, err := os.Create(string(filename))
	if err != nil {
		return status.WriteError
	}
	err = png.Encode(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return status.WriteError
	}
	return status.Success
}

// SurfaceWriteToPNGStream writes an image surface as PNG through write.
func (e *Engine) SurfaceWriteToPNGStream(s native.Handle, write native.WriteFunc, c native.Closure) native.Status {
	if write == nil {
		return status.NullPointer
	}
	e.mu.Lock()
	img, st := e.snapshot(s)
	e.mu.Unlock()
	if st != status.Success {
		return st
	}

	w := &callbackWriter{write: write, c: c}
	if err := png.Encode(w, img); err != nil {
		if w.st != status.Success {
			return w.st
		}
		return status.PNGError
	}
	return status.Success
}

// ImageSurfaceCreateFromPNG loads a PNG file into a new image surface.
func (e *Engine) ImageSurfaceCreateFromPNG(filename []byte) native.Handle {
	data, err := os.ReadFile(string(filename))
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		if stderrors.Is(err, fs.ErrNotExist) {
			return e.errorObject(native.KindSurface, status.FileNotFound)
		}
		return e.errorObject(native.KindSurface, status.ReadError)
	}
	return e.fromPNG(bytes.NewReader(data))
}

// ImageSurfaceCreateFromPNGStream loads a PNG through read. The stream is
// consumed chunk by chunk up to IEND, each read asking for an exact size.
func (e *Engine) ImageSurfaceCreateFromPNGStream(read native.ReadFunc, c native.Closure) native.Handle {
	if read == nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.errorObject(native.KindSurface, status.NullPointer)
	}
	data, st := readPNGChunks(read, c)
	if st != status.Success {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.errorObject(native.KindSurface, st)
	}
	return e.fromPNG(bytes.NewReader(data))
}

func readPNGChunks(read native.ReadFunc, c native.Closure) ([]byte, native.Status) {
	var buf bytes.Buffer

	sig := make([]byte, len(pngSignature))
	if st := read(c, sig); st != status.Success {
		return nil, st
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, status.PNGError
	}
	buf.Write(sig)

	for {
		hdr := make([]byte, 8)
		if st := read(c, hdr); st != status.Success {
			return nil, st
		}
		length := binary.BigEndian.Uint32(hdr)
		if length > maxPNGChunk {
			return nil, status.PNGError
		}
		body := make([]byte, length+4)
		if st := read(c, body); st != status.Success {
			return nil, st
		}
		buf.Write(hdr)
		buf.Write(body)
		if string(hdr[4:8]) == "IEND" {
			return buf.Bytes(), status.Success
		}
	}
}

func (e *Engine) fromPNG(r io.Reader) native.Handle {
	img, err := png.Decode(r)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return e.errorObject(native.KindSurface, status.PNGError)
	}

	b := img.Bounds()
	format := native.FormatARGB32
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		format = native.FormatRGB24
	}
	h := e.newImage(format, b.Dx(), b.Dy(), nil, 0)
	sf := e.objects[h].surface
	if sf.data == nil {
		return h
	}
	for y := 0; y < b.Dy(); y++ {
		row := sf.data[y*sf.stride:]
		for x := 0; x < b.Dx(); x++ {
			p := premultiply(img.At(b.Min.X+x, b.Min.Y+y))
			if format == native.FormatRGB24 {
				p |= 0xff << 24
			}
			binary.LittleEndian.PutUint32(row[4*x:], p)
		}
	}
	return h
}
