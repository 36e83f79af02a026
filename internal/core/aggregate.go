package core

// aggregate.go reduces a record collection into the summaries behind the
// dashboard charts. Every function is pure and total: an empty collection
// yields empty slices, and SummarizeRange reports "no data" as nil.

import (
	"math"
	"sort"
)

// RangeBucketWidth is the width in miles of each electric range bucket.
const RangeBucketWidth = 50

// DefaultTopN is the number of make/model groups shown by default.
const DefaultTopN = 5

// YearCount is the number of vehicles sharing a model year.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// TypeCount is the number of vehicles of one electric vehicle type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// BucketCount is the number of vehicles whose range falls in
// [Floor, Floor+RangeBucketWidth).
type BucketCount struct {
	Floor int64 `json:"range"`
	Count int   `json:"count"`
}

// MakeModelCount is the number of vehicles of one make and model.
type MakeModelCount struct {
	MakeModel string `json:"makeModel"`
	Count     int    `json:"count"`
}

// RangeSummary holds min, max and mean electric range.
type RangeSummary struct {
	Min     int64   `json:"min"`
	Max     int64   `json:"max"`
	Average float64 `json:"average"`
}

// Summary bundles every aggregate for a collection.
type Summary struct {
	Total     int              `json:"total"`
	ByYear    []YearCount      `json:"byYear"`
	ByType    []TypeCount      `json:"byType"`
	ByRange   []BucketCount    `json:"byRange"`
	TopModels []MakeModelCount `json:"topMakeModel"`
	Range     *RangeSummary    `json:"rangeSummary"`
}

// Summarize computes all aggregates. Each is derived independently.
func Summarize(records []Record, topN int) Summary {
	return Summary{
		Total:     len(records),
		ByYear:    CountByYear(records),
		ByType:    CountByType(records),
		ByRange:   CountByRangeBucket(records),
		TopModels: TopMakeModel(records, topN),
		Range:     SummarizeRange(records),
	}
}

// keyCounter counts string keys and remembers first-seen order.
type keyCounter struct {
	order  []string
	counts map[string]int
}

func newKeyCounter() *keyCounter {
	return &keyCounter{counts: make(map[string]int)}
}

func (k *keyCounter) add(key string) {
	if _, ok := k.counts[key]; !ok {
		k.order = append(k.order, key)
	}
	k.counts[key]++
}

// CountByYear groups records by exact ModelYear, ordered by year.
func CountByYear(records []Record) []YearCount {
	kc := newKeyCounter()
	for _, r := range records {
		kc.add(r.Text(FieldModelYear))
	}

	keys := append([]string(nil), kc.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return compareText(keys[i], keys[j]) < 0
	})

	result := make([]YearCount, 0, len(keys))
	for _, k := range keys {
		result = append(result, YearCount{Year: k, Count: kc.counts[k]})
	}
	return result
}

// CountByType groups records by exact ElectricVehicleType in
// first-encountered order.
func CountByType(records []Record) []TypeCount {
	kc := newKeyCounter()
	for _, r := range records {
		kc.add(r.Text(FieldVehicleType))
	}

	result := make([]TypeCount, 0, len(kc.order))
	for _, k := range kc.order {
		result = append(result, TypeCount{Type: k, Count: kc.counts[k]})
	}
	return result
}

// RangeBucket returns the bucket floor for an electric range.
func RangeBucket(rangeMiles int64) int64 {
	return int64(math.Floor(float64(rangeMiles)/RangeBucketWidth)) * RangeBucketWidth
}

// recordRange returns the electric range, treating absent or
// non-numeric values as zero.
func recordRange(r Record) int64 {
	if v, ok := r.Int(FieldRange); ok {
		return v
	}
	if v, ok := r.Get(FieldRange); ok {
		if f, ok := toFloat(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(math.Floor(f))
		}
	}
	return 0
}

// CountByRangeBucket groups records into width-50 range buckets,
// ordered by bucket floor.
func CountByRangeBucket(records []Record) []BucketCount {
	counts := make(map[int64]int)
	for _, r := range records {
		counts[RangeBucket(recordRange(r))]++
	}

	floors := make([]int64, 0, len(counts))
	for f := range counts {
		floors = append(floors, f)
	}
	sort.Slice(floors, func(i, j int) bool { return floors[i] < floors[j] })

	result := make([]BucketCount, len(floors))
	for i, f := range floors {
		result[i] = BucketCount{Floor: f, Count: counts[f]}
	}
	return result
}

// TopMakeModel returns the n most common "Make Model" pairs, by count
// descending. Ties keep first-encountered order.
func TopMakeModel(records []Record, n int) []MakeModelCount {
	if n <= 0 {
		return []MakeModelCount{}
	}

	kc := newKeyCounter()
	for _, r := range records {
		kc.add(r.Text(FieldMake) + " " + r.Text(FieldModel))
	}

	result := make([]MakeModelCount, len(kc.order))
	for i, k := range kc.order {
		result[i] = MakeModelCount{MakeModel: k, Count: kc.counts[k]}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}

// SummarizeRange returns min, max and average electric range.
// Returns nil when there are no records.
func SummarizeRange(records []Record) *RangeSummary {
	if len(records) == 0 {
		return nil
	}

	first := recordRange(records[0])
	s := &RangeSummary{Min: first, Max: first}
	var sum float64
	for _, r := range records {
		v := recordRange(r)
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += float64(v)
	}

	s.Average = math.Round(sum/float64(len(records))*100) / 100
	return s
}
