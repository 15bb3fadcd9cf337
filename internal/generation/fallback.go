package generation

// Fallbacks holds the user-facing messages shown when a call does not produce
// usable text.
type Fallbacks struct {
	// Quota is shown after capacity exhaustion survives every retry.
	Quota string
	// Generic is shown for every other failure.
	Generic string
	// Empty is shown when the call succeeded with no text.
	Empty string
}

// WithEmpty returns a copy of f using empty as the empty-answer message.
func (f Fallbacks) WithEmpty(empty string) Fallbacks {
	f.Empty = empty
	return f
}

// Purpose distinguishes the fallback wording of text and vision calls.
type Purpose int

// Purposes
const (
	PurposeMedical Purpose = iota
	PurposeVision
)

var fallbackTable = map[string]map[Purpose]Fallbacks{
	"en": {
		PurposeMedical: {
			Quota:   "The Bio-Nexus AI is currently experiencing high demand (Quota Exceeded). Please wait a moment and try again.",
			Generic: "I'm sorry, I encountered an error processing your medical request.",
			Empty:   "No response received.",
		},
		PurposeVision: {
			Quota:   "Image analysis quota exceeded. Please try again in a few minutes.",
			Generic: "Error analyzing the exam image.",
			Empty:   "No response received.",
		},
	},
	"vi": {
		PurposeMedical: {
			Quota:   "Bio-Nexus AI hiện đang quá tải (vượt hạn mức). Vui lòng đợi một lát rồi thử lại.",
			Generic: "Xin lỗi, đã xảy ra lỗi khi xử lý yêu cầu y khoa của bạn.",
			Empty:   "Không có phản hồi.",
		},
		PurposeVision: {
			Quota:   "Đã vượt hạn mức phân tích hình ảnh. Vui lòng thử lại sau vài phút.",
			Generic: "Lỗi khi phân tích ảnh đề thi.",
			Empty:   "Không có phản hồi.",
		},
	},
}

// FallbacksFor returns the messages for a language code ("en", "vi"),
// defaulting to English.
func FallbacksFor(lang string, purpose Purpose) Fallbacks {
	byPurpose, ok := fallbackTable[lang]
	if !ok {
		byPurpose = fallbackTable["en"]
	}
	fb, ok := byPurpose[purpose]
	if !ok {
		fb = byPurpose[PurposeMedical]
	}
	return fb
}
