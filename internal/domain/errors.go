package domain

import "errors"

var (
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrInsufficientQuestions indicates a difficulty tier has fewer
	// questions than its selection quota. A short bank is a config error.
	ErrInsufficientQuestions = errors.New("insufficient questions for tier")
	// ErrEmptyAnswerLog is returned when scoring is invoked with no answers.
	ErrEmptyAnswerLog = errors.New("answer log is empty")
	// ErrSessionNotFound is returned when a session ID is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionComplete indicates the session already produced its result.
	ErrSessionComplete = errors.New("session already complete")
	// ErrSessionInProgress rejects a reshuffle once an answer is finalized.
	ErrSessionInProgress = errors.New("session already in progress")
	// ErrNoSelection rejects an unforced advance with nothing selected.
	ErrNoSelection = errors.New("no option selected")
	// ErrTimeExpired rejects a selection after the countdown ran out.
	ErrTimeExpired = errors.New("time expired for question")
	// ErrAlreadyAdvanced indicates the question was already finalized.
	ErrAlreadyAdvanced = errors.New("question already advanced")
	// ErrOptionOutOfRange indicates a selection index outside the options.
	ErrOptionOutOfRange = errors.New("option index out of range")
)
