package ai

import (
	"encoding/json"
	"strings"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/zerr"
)

// decodeReply parses a JSON object from a model reply. Models frequently
// wrap JSON in markdown code fences or add prose around it, so the reply
// is narrowed to the outermost object before unmarshalling.
func decodeReply(reply string, v any) error {
	cleaned := strings.TrimSpace(reply)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return zerr.With(domain.ErrProviderResponseInvalid, "reason", "no JSON object in reply")
	}

	if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
		return zerr.Wrap(err, domain.ErrProviderResponseInvalid.Error())
	}
	return nil
}
