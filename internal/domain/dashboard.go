package domain

const UnassignedBucket = "UNASSIGNED"

var C3PAOBuckets = []string{"MET", "NOT_MET", "NA", UnassignedBucket}

var ImplStatusBuckets = []string{
	"Implemented",
	"Partially Implemented",
	"Planned or Not Implemented",
	"Alternative Implementation",
	"N/A",
	UnassignedBucket,
}

type DashboardCounts struct {
	Total int
	C3PAO map[string]int
	Impl  map[string]int
}
