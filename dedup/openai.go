package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// RequestFingerprint derives a deduplication hash and a canonical content
// string from a chat completion request. The content covers the model,
// the conversation, and the settings that change what the model returns,
// so two requests fingerprint identically exactly when a cached response
// for one is valid for the other.
func RequestFingerprint(req *openai.ChatCompletionRequest) (hash string, content string) {
	var b strings.Builder

	b.WriteString("model=")
	b.WriteString(req.Model)
	for _, msg := range req.Messages {
		b.WriteString("|")
		b.WriteString(msg.Role)
		b.WriteString(":")
		b.WriteString(msg.Content)
	}
	fmt.Fprintf(&b, "|temperature=%g|max_tokens=%d|top_p=%g|frequency_penalty=%g|presence_penalty=%g",
		req.Temperature, req.MaxTokens, req.TopP, req.FrequencyPenalty, req.PresencePenalty)

	content = b.String()
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:]), content
}
