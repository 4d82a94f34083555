package realtime

import (
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

// Stream part types, keyed by artifact kind. Text and code deltas append
// to the artifact's content buffer; an image delta replaces the image URL
// metadata instead of appending.
const (
	PartTypeTextDelta  = "text-delta"
	PartTypeCodeDelta  = "code-delta"
	PartTypeImageDelta = "image-delta"
	PartTypeFinish     = "finish"
)

type StreamPart struct {
	Type    string             `json:"type"`
	Kind    types.DocumentKind `json:"kind"`
	Content string             `json:"content,omitempty"`
}

// Event is one stream part addressed to a channel. Channels are keyed by
// chat id so every subscriber of a chat's artifact panel sees its parts.
type Event struct {
	Channel string     `json:"channel"`
	Part    StreamPart `json:"part"`
}

func ChatChannel(chatID string) string {
	return "chat:" + chatID
}

// DeltaTypeFor maps an artifact kind to its stream part type.
func DeltaTypeFor(kind types.DocumentKind) string {
	switch kind {
	case types.DocumentKindCode:
		return PartTypeCodeDelta
	case types.DocumentKindImage:
		return PartTypeImageDelta
	default:
		return PartTypeTextDelta
	}
}
