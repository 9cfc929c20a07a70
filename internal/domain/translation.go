package domain

import (
	"fmt"
	"strings"
)

// LocalizedAnswer is the per-language sub-record of a QA translation.
// HasAnswer is false when the sub-record exists but carries no answer field.
type LocalizedAnswer struct {
	Question  string
	Answer    string
	HasAnswer bool
}

// QATranslationRecord holds the canonical answers of one question in every language.
type QATranslationRecord struct {
	QuestionID string
	Localized  map[string]LocalizedAnswer
}

// ResolutionStatus describes how an answer lookup ended.
type ResolutionStatus int

const (
	// AnswerFound means the localized answer was returned.
	AnswerFound ResolutionStatus = iota
	// QuestionNotFound means no record carries the requested id.
	QuestionNotFound
	// AnswerNotFoundForLanguage means the record exists without an answer in the language.
	AnswerNotFoundForLanguage
)

func (s ResolutionStatus) String() string {
	switch s {
	case AnswerFound:
		return "found"
	case QuestionNotFound:
		return "question_not_found"
	case AnswerNotFoundForLanguage:
		return "language_not_found"
	default:
		return "unknown"
	}
}

// Resolution is the user-facing answer text plus the lookup outcome.
// Misses are soft failures: Answer then holds a readable sentinel message.
type Resolution struct {
	Answer string
	Status ResolutionStatus
}

// TranslationSet is the read-only QA translation document in document order.
// Question ids are not guaranteed unique; the first record wins.
type TranslationSet struct {
	records []QATranslationRecord
}

// NewTranslationSet wraps records in document order.
func NewTranslationSet(records []QATranslationRecord) *TranslationSet {
	return &TranslationSet{records: records}
}

// Len returns the number of records.
func (s *TranslationSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Resolve returns the localized answer for a question id.
// Ids are compared after trimming surrounding whitespace on both sides.
func (s *TranslationSet) Resolve(questionID, language string) Resolution {
	want := strings.TrimSpace(questionID)
	if s != nil {
		for _, rec := range s.records {
			if strings.TrimSpace(rec.QuestionID) != want {
				continue
			}
			loc, ok := rec.Localized[language]
			if !ok || !loc.HasAnswer {
				return Resolution{
					Answer: fmt.Sprintf("Không tìm thấy câu trả lời cho ngôn ngữ '%s'.", language),
					Status: AnswerNotFoundForLanguage,
				}
			}
			return Resolution{Answer: loc.Answer, Status: AnswerFound}
		}
	}
	return Resolution{
		Answer: fmt.Sprintf("Không tìm thấy câu hỏi với ID '%s'.", questionID),
		Status: QuestionNotFound,
	}
}
