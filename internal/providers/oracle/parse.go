package oracle

import (
	"encoding/json"
	"strings"

	"github.com/mockview/backend/internal/utils"
)

// parsePayload decodes the oracle's free-text output into dst. The model is
// asked for bare JSON but tends to wrap it in markdown fences or prose, so
// after a failed direct parse we make one structural-extraction attempt
// (outermost brace pair) before giving up with MALFORMED_RESPONSE. No
// default values are ever substituted.
func parsePayload(op, text string, dst any) error {
	trimmed := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(trimmed), dst); err == nil {
		return nil
	}

	if obj, ok := extractJSONObject(trimmed); ok {
		if err := json.Unmarshal([]byte(obj), dst); err == nil {
			return nil
		}
	}

	return utils.E(utils.CodeMalformedResponse, op, "oracle response is not valid JSON", nil)
}

// extractJSONObject returns the substring from the first '{' to the last
// '}', mirroring the salvage a human would do on fenced or chatty output.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
