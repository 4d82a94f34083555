package chatclient

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Stream part types mirrored from the backend wire format.
const (
	PartTypeTextDelta  = "text-delta"
	PartTypeCodeDelta  = "code-delta"
	PartTypeImageDelta = "image-delta"
	PartTypeFinish     = "finish"
)

type StreamPart struct {
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Content string `json:"content,omitempty"`
}

// Artifact accumulates the stream parts of one generated document into
// the state the side panel renders. Text and code deltas append to the
// content buffer; an image delta replaces the image URL instead of
// appending. Any delta makes the panel visible.
type Artifact struct {
	DocumentID string
	Title      string
	Kind       string
	Content    string
	ImageURL   string
	Visible    bool
	Complete   bool
}

// Apply folds one stream part into the artifact. Unknown part types are
// ignored so the panel survives protocol additions.
func (a *Artifact) Apply(part StreamPart) {
	switch part.Type {
	case PartTypeTextDelta, PartTypeCodeDelta:
		a.Content += part.Content
		a.Visible = true
	case PartTypeImageDelta:
		a.ImageURL = part.Content
		a.Visible = true
	case PartTypeFinish:
		a.Complete = true
	}
	if a.Kind == "" && part.Kind != "" {
		a.Kind = part.Kind
	}
}

// ReadStream consumes a text/event-stream body and feeds each decoded
// stream part to apply. It returns when the stream ends, the context is
// cancelled, or a read fails.
func ReadStream(ctx context.Context, r io.Reader, apply func(StreamPart)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventType, data string
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		switch {
		case line == "":
			if data != "" {
				var part StreamPart
				if err := json.Unmarshal([]byte(data), &part); err == nil {
					if part.Type == "" {
						part.Type = eventType
					}
					apply(part)
				}
			}
			eventType, data = "", ""
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

// FollowArtifact opens the chat's artifact stream and folds every part
// into the artifact until the stream closes or ctx is cancelled. onPart,
// when non-nil, observes each applied part.
func FollowArtifact(ctx context.Context, c *Client, chatID string, artifact *Artifact, onPart func(StreamPart)) error {
	body, err := c.OpenArtifactStream(ctx, chatID)
	if err != nil {
		return err
	}
	defer body.Close()

	return ReadStream(ctx, body, func(part StreamPart) {
		artifact.Apply(part)
		if onPart != nil {
			onPart(part)
		}
	})
}
