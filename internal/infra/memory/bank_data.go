package memory

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"iq-quiz-service/internal/domain"
)

//go:embed questions.json
var defaultBankJSON []byte

// DefaultBank parses the embedded question bank shipped with the binary.
func DefaultBank() (domain.QuestionBank, error) {
	var bank domain.QuestionBank
	if err := json.Unmarshal(defaultBankJSON, &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("parse embedded bank: %w", err)
	}
	return bank, nil
}

// DefaultBankLoader wraps the embedded bank in a static loader.
func DefaultBankLoader() (*StaticBankLoader, error) {
	bank, err := DefaultBank()
	if err != nil {
		return nil, err
	}
	return NewStaticBankLoader(map[string]domain.QuestionBank{bank.ID: bank}), nil
}
