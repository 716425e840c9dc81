package dbi

import (
	"fmt"
	"io"
)

// CommonResponse is the envelope every prediction-service endpoint answers with.
type CommonResponse[T any] struct {
	Status    int     `json:"status"`
	Timestamp float64 `json:"timestamp"`
	Success   bool    `json:"success"`
	Response  T       `json:"response"`
}

type PredictionResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type PredictURLRequest struct {
	URL string `json:"url"`
}

// ImageFile is an in-memory image handed to PredictFromFile.
type ImageFile struct {
	Name    string
	Content []byte
}

func NewImageFile(name string, content []byte) ImageFile {
	return ImageFile{
		Name:    name,
		Content: content,
	}
}

func ReadImageFile(r io.Reader, name string) (ImageFile, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return ImageFile{}, fmt.Errorf("error reading image %s: %w", name, err)
	}

	return NewImageFile(name, content), nil
}
