package calculator

import "sort"

// RegionPricing holds the published pricing coefficients for one serverless
// region.
type RegionPricing struct {
	// RowBasedStoragePerGiB is the monthly price of one GiB of row storage
	RowBasedStoragePerGiB float64

	// RequestUnitsPerMillion is the price of one million request units
	RequestUnitsPerMillion float64

	// FreeCredit is the flat monthly dollar allowance
	FreeCredit float64
}

// regionPricing is the fixed pricing table, keyed by exact region
// identifier. There is no dynamic region registration.
var regionPricing = map[string]RegionPricing{
	"us-east-1":      {RowBasedStoragePerGiB: 0.20, RequestUnitsPerMillion: 0.10, FreeCredit: 6.00},
	"us-west-2":      {RowBasedStoragePerGiB: 0.20, RequestUnitsPerMillion: 0.10, FreeCredit: 6.00},
	"eu-central-1":   {RowBasedStoragePerGiB: 0.24, RequestUnitsPerMillion: 0.12, FreeCredit: 7.20},
	"ap-southeast-1": {RowBasedStoragePerGiB: 0.24, RequestUnitsPerMillion: 0.12, FreeCredit: 7.20},
	"ap-northeast-1": {RowBasedStoragePerGiB: 0.24, RequestUnitsPerMillion: 0.12, FreeCredit: 7.20},
}

// Regions returns the supported region identifiers in sorted order.
func Regions() []string {
	regions := make([]string, 0, len(regionPricing))
	for region := range regionPricing {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}
