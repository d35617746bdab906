package models

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// MediaKind is the declared type of an uploaded attachment. The declared
// type selects both the storage folder and the size ceiling, so it is
// validated before any byte is sent upstream.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaArchive  MediaKind = "zip"
	MediaDocument MediaKind = "pdf"
)

const (
	maxImageBytes    = 10 << 20 // 10MB
	maxVideoBytes    = 50 << 20 // 50MB
	maxArchiveBytes  = 20 << 20 // 20MB
	maxDocumentBytes = 5 << 20  // 5MB
)

var mediaLimits = map[MediaKind]int{
	MediaImage:    maxImageBytes,
	MediaVideo:    maxVideoBytes,
	MediaArchive:  maxArchiveBytes,
	MediaDocument: maxDocumentBytes,
}

var mediaFolders = map[MediaKind]string{
	MediaImage:    "messages/images",
	MediaVideo:    "messages/videos",
	MediaArchive:  "messages/zips",
	MediaDocument: "messages/documents",
}

// MediaPayload is a decoded, validated attachment ready for upload.
type MediaPayload struct {
	Kind        MediaKind
	ContentType string
	Data        []byte
}

// Folder returns the upload folder for the payload's kind.
func (p *MediaPayload) Folder() string {
	return mediaFolders[p.Kind]
}

// SizeLimit returns the byte ceiling for the payload's kind.
func (p *MediaPayload) SizeLimit() int {
	return mediaLimits[p.Kind]
}

// ParseMediaDataURI decodes a data URI ("data:<type>;base64,<payload>") into
// a MediaPayload. The declared type must be on the allow-list and the decoded
// payload must fit the type's size ceiling; both checks happen here, before
// any upload is attempted.
func ParseMediaDataURI(uri string) (*MediaPayload, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, Validationf("invalid media format")
	}
	meta, encoded, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return nil, Validationf("invalid media format")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == meta {
		return nil, Validationf("media must be base64 encoded")
	}

	kind, err := mediaKindOf(contentType)
	if err != nil {
		return nil, err
	}

	limit := mediaLimits[kind]
	if base64.StdEncoding.DecodedLen(len(encoded)) > limit {
		return nil, Validationf("file size exceeds %dMB limit", limit>>20)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, Validationf("invalid base64 media payload")
	}
	if len(data) > limit {
		return nil, Validationf("file size exceeds %dMB limit", limit>>20)
	}

	return &MediaPayload{
		Kind:        kind,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func mediaKindOf(contentType string) (MediaKind, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return MediaVideo, nil
	case contentType == "application/zip":
		return MediaArchive, nil
	case contentType == "application/pdf":
		return MediaDocument, nil
	}
	return "", Validationf("unsupported media type: %s", contentType)
}

// DataURI re-encodes the payload, mainly useful for building test fixtures
// and the interactive client.
func (p *MediaPayload) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", p.ContentType, base64.StdEncoding.EncodeToString(p.Data))
}
