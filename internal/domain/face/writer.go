package face

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

var dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Writer lays face images out as <root>/<companyId>/<employeeNumber>_<unixMillis>.jpg,
// the directory shape the recognition trainer reads.
type Writer struct {
	root    string
	maxSide int
	now     func() time.Time
}

func NewWriter(root string, maxSide int) *Writer {
	return &Writer{root: root, maxSide: maxSide, now: time.Now}
}

// Decode strips an optional data URL header and decodes the picture.
func Decode(imageBase64 string) (image.Image, error) {
	raw := strings.TrimSpace(dataURLPrefix.ReplaceAllString(strings.TrimSpace(imageBase64), ""))
	if raw == "" {
		return nil, ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(raw); err != nil {
			return nil, ErrInvalidImage
		}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Write normalizes the image to fit maxSide and stores it as JPEG. It returns
// the path written.
func (w *Writer) Write(companyID, employeeNumber int64, imageBase64 string) (string, error) {
	img, err := Decode(imageBase64)
	if err != nil {
		return "", err
	}
	if w.maxSide > 0 {
		b := img.Bounds()
		if b.Dx() > w.maxSide || b.Dy() > w.maxSide {
			img = imaging.Fit(img, w.maxSide, w.maxSide, imaging.Lanczos)
		}
	}

	dir := filepath.Join(w.root, strconv.FormatInt(companyID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	// several faces of one employee can land in the same millisecond
	millis := w.now().UnixMilli()
	var target string
	for {
		target = filepath.Join(dir, fmt.Sprintf("%d_%d.jpg", employeeNumber, millis))
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		millis++
	}

	tmp, err := os.CreateTemp(dir, ".face-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if err := imaging.Encode(tmp, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}
