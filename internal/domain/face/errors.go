package face

import (
	"errors"

	"chronos/internal/platform/faceapi"
)

var (
	ErrNoFaceData                  = errors.New("no face data found for company")
	ErrInvalidImage                = errors.New("image is not a decodable base64 picture")
	ErrEmbeddingServiceUnavailable = faceapi.ErrUpstream
)
