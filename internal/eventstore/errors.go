package eventstore

import (
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Sentinel errors for event store operations. Wrap them with WithCause so
// errors.Is keeps working on the returned value.
var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StoreError("could not open build history database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.StoreError("failed to initialize build history schema").Build()

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = errors.StoreError("failed to append event to store").Build()

	// ErrEventQueryFailed indicates querying events failed.
	ErrEventQueryFailed = errors.StoreError("failed to query events from store").Build()

	// ErrMarshalPayloadFailed indicates JSON marshaling of event payload failed.
	ErrMarshalPayloadFailed = errors.StoreError("failed to marshal event payload").Build()

	// ErrBuildNotFound indicates no events exist for the requested build.
	ErrBuildNotFound = errors.NewError(errors.CategoryNotFound, "build not found in history").Build()
)

// wrap returns a copy of sentinel carrying cause and context.
func wrap(sentinel *errors.ClassifiedError, cause error, kv ...string) error {
	b := errors.WrapError(cause, sentinel.Category(), sentinel.Message())
	for i := 0; i+1 < len(kv); i += 2 {
		b = b.WithContext(kv[i], kv[i+1])
	}
	return b.Build()
}
