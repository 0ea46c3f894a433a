// Package workload defines the canonical hourly usage model and the
// engine-specific normalizers that produce it from raw database statistics.
package workload

// RequestDescription describes one class of traffic as an hourly rate.
type RequestDescription struct {
	// RequestsPerHour is the hourly request rate. It is nil for traffic
	// that is accounted in bytes only, such as egress.
	RequestsPerHour *uint64 `json:"requests_per_hour,omitempty" yaml:"requests_per_hour,omitempty"`

	// BytesPerHour is the hourly byte volume
	BytesPerHour uint64 `json:"bytes_per_hour" yaml:"bytes_per_hour"`
}

// Requests returns the hourly request rate, or 0 when it is not tracked.
func (r RequestDescription) Requests() uint64 {
	if r.RequestsPerHour == nil {
		return 0
	}
	return *r.RequestsPerHour
}

// StorageDescription is the current on-disk footprint, sampled once.
type StorageDescription struct {
	// DataInBytes is the row data size
	DataInBytes uint64 `json:"data_in_bytes" yaml:"data_in_bytes"`

	// IndexInBytes is the index size
	IndexInBytes uint64 `json:"index_in_bytes" yaml:"index_in_bytes"`
}

// WorkloadDescription is the canonical usage snapshot all pricing math
// consumes. Every rate field is per-hour, already windowed; consumers must
// not re-derive rates from raw durations.
type WorkloadDescription struct {
	Read    RequestDescription `json:"read" yaml:"read"`
	Write   RequestDescription `json:"write" yaml:"write"`
	Egress  RequestDescription `json:"egress" yaml:"egress"`
	Storage StorageDescription `json:"storage" yaml:"storage"`
}
