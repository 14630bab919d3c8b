package port

// DiskUsage represents disk usage of the filesystem holding the downloads
type DiskUsage struct {
	Total   uint64
	Used    uint64
	Free    uint64
	UsedPct float64
}

// DiskReporter reports disk usage of the output directory
type DiskReporter interface {
	GetDiskUsage() (*DiskUsage, error)
}
