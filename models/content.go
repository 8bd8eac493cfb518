package models

import "strings"

// imagePrefix marks decrypted payloads that carry an image URL
// instead of text. The cipher and the store treat such payloads as
// opaque text; only rendering distinguishes them.
const imagePrefix = "[IMG]"

// ContentKind separates renderable message payload variants.
type ContentKind int

const (
	// ContentText is a plain text payload.
	ContentText ContentKind = iota
	// ContentImage is a reference to an uploaded image.
	ContentImage
)

// Content is the render-facing form of a decrypted payload.
type Content struct {
	Kind ContentKind
	Text string
	URL  string
}

// ParseContent classifies a decrypted payload for rendering.
func ParseContent(plain string) Content {
	if url, ok := strings.CutPrefix(plain, imagePrefix); ok {
		return Content{Kind: ContentImage, URL: url}
	}
	return Content{Kind: ContentText, Text: plain}
}

// FormatImage builds the wire text for an image reference.
func FormatImage(url string) string {
	return imagePrefix + url
}
