package generator

import (
	"strings"

	"google.golang.org/genai"
)

var policyFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:                 true,
	genai.FinishReasonBlocklist:              true,
	genai.FinishReasonProhibitedContent:      true,
	genai.FinishReasonSPII:                   true,
	genai.FinishReasonImageSafety:            true,
	genai.FinishReasonImageProhibitedContent: true,
}

func isPolicyFinish(reason genai.FinishReason) bool {
	return policyFinishReasons[reason]
}

func blockReason(resp *genai.GenerateContentResponse) genai.BlockedReason {
	if resp.PromptFeedback == nil {
		return ""
	}
	if r := resp.PromptFeedback.BlockReason; r != "" && r != genai.BlockedReasonUnspecified {
		return r
	}
	return ""
}

func findImage(candidate *genai.Candidate, seed int64) *ImageOutput {
	if candidate == nil || candidate.Content == nil {
		return nil
	}
	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = fallbackImageMimeType
		}
		return &ImageOutput{Data: part.InlineData.Data, MimeType: mimeType, UsedSeed: seed}
	}
	return nil
}

func candidateText(candidate *genai.Candidate) string {
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
