package model

import (
	"encoding/json"
	"fmt"
)

// Log actions. The action discriminates the payload variant attached to a
// log document.
const (
	ActionBall       = "ball"
	ActionScreenshot = "screenshot"
)

// LogPayload is the action-discriminated payload of a log document.
type LogPayload interface {
	isLogPayload()
}

// ScoreEvent is the payload of an ActionBall document.
type ScoreEvent struct {
	BatterID int    `json:"batterId"`
	BallType string `json:"ballType"`
}

func (ScoreEvent) isLogPayload() {}

// ScreenshotAttachment is the payload of an ActionScreenshot document.
type ScreenshotAttachment struct {
	FileName    string `json:"fileName"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

func (ScreenshotAttachment) isLogPayload() {}

// EncodePayload serializes a payload for storage. A nil payload encodes to
// nil so the store can keep the column NULL.
func EncodePayload(p LogPayload) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode log payload: %w", err)
	}
	return raw, nil
}

// DecodePayload deserializes a stored payload using the document's action as
// the discriminator. Unknown actions yield a nil payload rather than an
// error; old documents may predate a variant.
func DecodePayload(action string, raw []byte) (LogPayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch action {
	case ActionBall:
		var p ScoreEvent
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode score event payload: %w", err)
		}
		return p, nil
	case ActionScreenshot:
		var p ScreenshotAttachment
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode screenshot payload: %w", err)
		}
		return p, nil
	default:
		return nil, nil
	}
}
