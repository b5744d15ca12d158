package docx

import (
	"errors"
	"fmt"
)

// Stage identifies where a mapping export failed. The values are stable keys
// a UI can translate.
type Stage string

const (
	StageLoad     Stage = "load"
	StageParse    Stage = "parse"
	StageValidate Stage = "validate"
	StagePath     Stage = "path"
	StageTemplate Stage = "template"
)

var (
	ErrMissingVersion     = errors.New("version is required")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrMissingFields      = errors.New("fields must be a non-empty array")
	ErrInvalidFields      = errors.New("fields must be an array")
	ErrInvalidLoops       = errors.New("loops must be an array")
	ErrInvalidBinding     = errors.New("binding needs var and path")
	ErrInvalidI18N        = errors.New("i18n must be an object")
	ErrUnsafePath         = errors.New("unsafe asset path")
	ErrWalletTemplate     = errors.New("wallet template not available")
)

// WalletFormpackID is the only formpack that ships a wallet template.
const WalletFormpackID = "notfallpass"

// WalletTemplateID names the credit-card sized template variant.
const WalletTemplateID = "wallet"

// StageError wraps a failure with the stage it happened in. Its message
// starts with a fixed prefix per stage.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StageLoad:
		return fmt.Sprintf("Unable to load %s: %v", e.Path, e.Err)
	case StageParse:
		return fmt.Sprintf("Unable to parse %s: %v", e.Path, e.Err)
	case StagePath:
		return fmt.Sprintf("Invalid DOCX mapping path %q: %v", e.Path, e.Err)
	case StageTemplate:
		return "Wallet template is only available for " + WalletFormpackID
	default:
		return fmt.Sprintf("Invalid DOCX mapping: %v", e.Err)
	}
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage of err, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func validationError(err error) error {
	return &StageError{Stage: StageValidate, Err: err}
}
