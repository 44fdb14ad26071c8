package resolve

// TransferEventType enumerates the lifecycle of a single transfer (spec §6).
type TransferEventType uint8

const (
	TransferInitiated TransferEventType = iota
	TransferStarted
	TransferProgressed
	TransferCorrupted
	TransferSucceeded
	TransferFailed
)

// TransferRequestType distinguishes what kind of operation a transfer is
// carrying out (spec §6).
type TransferRequestType uint8

const (
	TransferGet TransferRequestType = iota
	TransferGetExistence
	TransferPut
)

// TransferEvent is the event shape delivered to a TransferListener (spec
// §6). Event order per transfer matches the regular expression
// "INITIATED ( STARTED PROGRESSED* CORRUPTED? )* ( SUCCEEDED | FAILED )".
type TransferEvent struct {
	Type             TransferEventType
	RequestType      TransferRequestType
	Resource         string
	TransferredBytes int64
	// DataBuffer is only valid during the callback itself and only
	// meaningful for TransferProgressed events; callers must not retain it.
	DataBuffer []byte
	Exception  error
}

// TransferListener receives read-only transfer progress notifications.
// Implementations must not block the caller for long, and must not retain
// DataBuffer past the callback (spec §6).
type TransferListener interface {
	OnTransfer(event TransferEvent)
}

// RepositoryEventType enumerates the coarse repository lifecycle
// notifications of spec §6.
type RepositoryEventType uint8

const (
	EventArtifactResolving RepositoryEventType = iota
	EventArtifactResolved
	EventArtifactDescriptorMissing
	EventArtifactDescriptorInvalid
	EventMetadataInvalid
)

// RepositoryEvent is the event shape delivered to a RepositoryListener.
type RepositoryEvent struct {
	Type      RepositoryEventType
	Artifact  Artifact
	Exception error
}

// RepositoryListener receives coarse lifecycle events; like
// TransferListener it is optional and read-only from the core.
type RepositoryListener interface {
	OnRepositoryEvent(event RepositoryEvent)
}
