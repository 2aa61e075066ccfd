package types

// KnownDuplicate links the canonical original of a fingerprint to the group
// directory created when its first duplicate was found
type KnownDuplicate struct {
	Filename string `json:"filename"`
	Group    int    `json:"group"`
}

// ScanResult holds the counters reported at the end of a scan
type ScanResult struct {
	ImagesProcessed int `json:"images_processed"`
	DuplicateGroups int `json:"duplicate_groups"`
}
