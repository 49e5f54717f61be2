package gemini

import "google.golang.org/genai"

var finishReasonMessages = map[genai.FinishReason]string{
	genai.FinishReasonMaxTokens:             "Response was truncated due to maximum token limit.",
	genai.FinishReasonSafety:                "Response was blocked due to safety concerns.",
	genai.FinishReasonRecitation:            "Response was blocked due to unauthorized citations.",
	genai.FinishReasonBlocklist:             "Response was blocked due to restricted terminology.",
	genai.FinishReasonProhibitedContent:     "Response was blocked due to prohibited content.",
	genai.FinishReasonSPII:                  "Response was blocked due to sensitive personal information concerns.",
	genai.FinishReasonMalformedFunctionCall: "The model generated an invalid function call.",
	genai.FinishReasonOther:                 "The model stopped for an unspecified reason.",
}

const defaultFinishReasonMessage = "Generation stopped unexpectedly"

// FinishReasonMessage returns a human-readable explanation for a finish reason.
func FinishReasonMessage(reason genai.FinishReason) string {
	if msg, ok := finishReasonMessages[reason]; ok {
		return msg
	}
	return defaultFinishReasonMessage
}

// IsNormalCompletion reports whether reason means the model simply finished.
func IsNormalCompletion(reason genai.FinishReason) bool {
	return reason == genai.FinishReasonStop
}
