package model

// DataState is the perception handshake between the detection sweep,
// the perception aggregator and the pursuit controller.
//
//	Unknown -> Updated -> Transferred -> Processed -> Updated -> ...
type DataState int32

const (
	// DataUnknown - nothing was produced yet
	DataUnknown DataState = iota
	// DataUpdated - affection masks were refreshed by the detection sweep
	DataUpdated
	// DataTransferred - masks were drained into candidates
	DataTransferred
	// DataProcessed - candidates were merged into pursuit containers
	DataProcessed
)

// String returns human-readable state name
func (s DataState) String() string {
	switch s {
	case DataUnknown:
		return "UNKNOWN"
	case DataUpdated:
		return "UPDATED"
	case DataTransferred:
		return "TRANSFERRED"
	case DataProcessed:
		return "PROCESSED"
	default:
		return "INVALID"
	}
}

// Next returns the state that follows s in the handshake cycle.
func (s DataState) Next() DataState {
	switch s {
	case DataUnknown, DataProcessed:
		return DataUpdated
	case DataUpdated:
		return DataTransferred
	case DataTransferred:
		return DataProcessed
	default:
		return s
	}
}
