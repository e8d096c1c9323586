package sound

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

var errEmptyAsset = errors.New("no audio frames")

// decode turns raw asset bytes into an in-memory buffer, choosing the codec
// from the file extension.
func decode(name string, data []byte) (*beep.Buffer, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".wav":
		stream, format, err = wav.Decode(bytes.NewReader(data))
	case ".mp3":
		stream, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("decode %s: unsupported format %q", name, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	defer stream.Close()

	buf := beep.NewBuffer(format)
	buf.Append(stream)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("decode %s: %w", name, errEmptyAsset)
	}
	return buf, nil
}
