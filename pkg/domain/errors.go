package domain

import "errors"

// Error taxonomy for scene construction and persistence.
//
// Check with errors.Is:
//
//	if errors.Is(err, domain.ErrUnknownTypeTag) {
//	    // skip the node
//	}
var (
	// ErrConstruction is returned when a factory or a resource load fails.
	ErrConstruction = errors.New("construction failed")

	// ErrUnknownTypeTag is returned when a label has no registered factory.
	ErrUnknownTypeTag = errors.New("unknown type tag")

	// ErrMalformedJSON is returned when a serialized element is missing a required field
	// or a field has the wrong shape.
	ErrMalformedJSON = errors.New("malformed json")

	// ErrMarkedError is returned for serialized elements carrying an "error" annotation.
	ErrMarkedError = errors.New("element marked with error")

	// ErrIOFailure is returned when a store cannot open, write, rename or remove a document.
	ErrIOFailure = errors.New("io failure")

	// ErrDocumentNotFound is returned when a document does not exist in a store.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidReference is returned when a reference no longer denotes a live element,
	// or when a move would make an element its own ancestor.
	ErrInvalidReference = errors.New("invalid element reference")

	// ErrNoSavePath is returned when a save has no path and none was chosen.
	ErrNoSavePath = errors.New("no save path chosen")
)

// Classify maps an error onto its taxonomy name, for log keys and metric labels.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMarkedError):
		return "marked_error"
	case errors.Is(err, ErrUnknownTypeTag):
		return "unknown_type_tag"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	case errors.Is(err, ErrConstruction):
		return "construction_error"
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrIOFailure):
		return "io_failure"
	case errors.Is(err, ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, ErrNoSavePath):
		return "no_save_path"
	default:
		return "unknown"
	}
}
