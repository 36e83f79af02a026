package core

import (
	"encoding/json"
	"testing"
)

func vehicle(vin, mk, model string, year any, evType string, rng any, county string) Record {
	return Record{
		FieldVIN:         vin,
		FieldMake:        mk,
		FieldModel:       model,
		FieldModelYear:   year,
		FieldVehicleType: evType,
		FieldRange:       rng,
		FieldCounty:      county,
	}
}

func fixture() []Record {
	return []Record{
		vehicle("5YJ3E1EA1K", "TESLA", "MODEL 3", "2019", "Battery Electric Vehicle (BEV)", 220, "King"),
		vehicle("1N4AZ0CP5D", "NISSAN", "LEAF", "2013", "Battery Electric Vehicle (BEV)", 75, "Kitsap"),
		vehicle("5YJSA1E2XF", "TESLA", "MODEL S", "2015", "Battery Electric Vehicle (BEV)", 208, "King"),
		vehicle("1G1RC6E44E", "CHEVROLET", "VOLT", "2014", "Plug-in Hybrid Electric Vehicle (PHEV)", 38, "Snohomish"),
		vehicle("5YJ3E1EB2J", "TESLA", "MODEL 3", "2018", "Battery Electric Vehicle (BEV)", 215, "Thurston"),
		vehicle("WBY1Z2C56F", "BMW", "I3", "2015", "Plug-in Hybrid Electric Vehicle (PHEV)", 72, "King"),
		vehicle("1N4BZ0CP0G", "NISSAN", "LEAF", "2016", "Battery Electric Vehicle (BEV)", 84, "Yakima"),
		vehicle("KNDCC3LG1L", "KIA", "NIRO", "2020", "Battery Electric Vehicle (BEV)", 0, "King"),
	}
}

func TestCountByYear(t *testing.T) {
	records := []Record{
		vehicle("a", "A", "X", "2020", "BEV", 10, "K"),
		vehicle("b", "A", "X", "2018", "BEV", 10, "K"),
		vehicle("c", "A", "X", "2020", "BEV", 10, "K"),
		vehicle("d", "A", "X", 2019, "BEV", 10, "K"),
	}

	got := CountByYear(records)
	want := []YearCount{{"2018", 1}, {"2019", 1}, {"2020", 2}}

	if len(got) != len(want) {
		t.Fatalf("CountByYear() returned %d groups, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CountByYear()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCountByType_FirstEncounteredOrder(t *testing.T) {
	records := []Record{
		vehicle("a", "A", "X", "2020", "PHEV", 10, "K"),
		vehicle("b", "A", "X", "2020", "BEV", 10, "K"),
		vehicle("c", "A", "X", "2020", "PHEV", 10, "K"),
	}

	got := CountByType(records)
	want := []TypeCount{{"PHEV", 2}, {"BEV", 1}}

	if len(got) != len(want) {
		t.Fatalf("CountByType() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CountByType()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRangeBucket(t *testing.T) {
	tests := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{49, 0},
		{50, 50},
		{99, 50},
		{100, 100},
		{337, 300},
	}

	for _, tt := range tests {
		if got := RangeBucket(tt.in); got != tt.want {
			t.Errorf("RangeBucket(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCountByRangeBucket(t *testing.T) {
	got := CountByRangeBucket(fixture())
	want := []BucketCount{{0, 2}, {50, 3}, {200, 3}}

	if len(got) != len(want) {
		t.Fatalf("CountByRangeBucket() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CountByRangeBucket()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCountByRangeBucket_MissingRangeCountsAsZero(t *testing.T) {
	records := []Record{
		{FieldMake: "A"},
		{FieldRange: "n/a"},
		{FieldRange: json.Number("120")},
		{FieldRange: 75.9},
	}

	got := CountByRangeBucket(records)
	want := []BucketCount{{0, 2}, {50, 1}, {100, 1}}

	if len(got) != len(want) {
		t.Fatalf("CountByRangeBucket() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("CountByRangeBucket()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAggregationTotals(t *testing.T) {
	records := fixture()

	sumYears := 0
	for _, c := range CountByYear(records) {
		sumYears += c.Count
	}
	sumTypes := 0
	for _, c := range CountByType(records) {
		sumTypes += c.Count
	}
	sumBuckets := 0
	for _, c := range CountByRangeBucket(records) {
		sumBuckets += c.Count
	}

	if sumYears != len(records) {
		t.Errorf("sum of year counts = %d, want %d", sumYears, len(records))
	}
	if sumTypes != len(records) {
		t.Errorf("sum of type counts = %d, want %d", sumTypes, len(records))
	}
	if sumBuckets != len(records) {
		t.Errorf("sum of bucket counts = %d, want %d", sumBuckets, len(records))
	}
}

func TestTopMakeModel(t *testing.T) {
	got := TopMakeModel(fixture(), 3)
	want := []MakeModelCount{
		{"TESLA MODEL 3", 2},
		{"NISSAN LEAF", 2},
		{"TESLA MODEL S", 1},
	}

	if len(got) != len(want) {
		t.Fatalf("TopMakeModel() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopMakeModel()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTopMakeModel_Bounds(t *testing.T) {
	records := fixture()
	groups := make(map[string]int)
	for _, r := range records {
		groups[r.Text(FieldMake)+" "+r.Text(FieldModel)]++
	}

	for _, n := range []int{0, 1, 5, 100} {
		got := TopMakeModel(records, n)
		if len(got) > n {
			t.Errorf("TopMakeModel(n=%d) returned %d entries", n, len(got))
		}
		for i, e := range got {
			if groups[e.MakeModel] != e.Count {
				t.Errorf("TopMakeModel(n=%d)[%d] = %v, true count %d", n, i, e, groups[e.MakeModel])
			}
			if i > 0 && got[i-1].Count < e.Count {
				t.Errorf("TopMakeModel(n=%d) not sorted descending at %d: %v", n, i, got)
			}
		}
	}
}

func TestSummarizeRange(t *testing.T) {
	got := SummarizeRange(fixture())
	if got == nil {
		t.Fatal("SummarizeRange() = nil, want summary")
	}

	if got.Min != 0 {
		t.Errorf("Min = %d, want 0", got.Min)
	}
	if got.Max != 220 {
		t.Errorf("Max = %d, want 220", got.Max)
	}
	// (220+75+208+38+215+72+84+0)/8 = 114
	if got.Average != 114 {
		t.Errorf("Average = %v, want 114", got.Average)
	}
}

func TestSummarizeRange_RoundsToTwoDecimals(t *testing.T) {
	records := []Record{{FieldRange: 10}, {FieldRange: 10}, {FieldRange: 11}}

	got := SummarizeRange(records)
	if got == nil {
		t.Fatal("SummarizeRange() = nil")
	}
	if got.Average != 10.33 {
		t.Errorf("Average = %v, want 10.33", got.Average)
	}
}

func TestSummarizeRange_Bounds(t *testing.T) {
	records := fixture()
	s := SummarizeRange(records)
	if s == nil {
		t.Fatal("SummarizeRange() = nil")
	}

	for i, r := range records {
		v, _ := r.Int(FieldRange)
		if v < s.Min || v > s.Max {
			t.Errorf("record %d range %d outside [%d, %d]", i, v, s.Min, s.Max)
		}
	}
	if s.Average < float64(s.Min) || s.Average > float64(s.Max) {
		t.Errorf("Average %v outside [%d, %d]", s.Average, s.Min, s.Max)
	}
}

func TestAggregates_EmptyInput(t *testing.T) {
	if got := CountByYear(nil); len(got) != 0 {
		t.Errorf("CountByYear(nil) = %v, want empty", got)
	}
	if got := CountByType(nil); len(got) != 0 {
		t.Errorf("CountByType(nil) = %v, want empty", got)
	}
	if got := CountByRangeBucket(nil); len(got) != 0 {
		t.Errorf("CountByRangeBucket(nil) = %v, want empty", got)
	}
	if got := TopMakeModel(nil, DefaultTopN); len(got) != 0 {
		t.Errorf("TopMakeModel(nil) = %v, want empty", got)
	}
	if got := SummarizeRange(nil); got != nil {
		t.Errorf("SummarizeRange(nil) = %+v, want nil", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixture(), DefaultTopN)

	if s.Total != 8 {
		t.Errorf("Total = %d, want 8", s.Total)
	}
	if len(s.TopModels) != DefaultTopN {
		t.Errorf("len(TopModels) = %d, want %d", len(s.TopModels), DefaultTopN)
	}
	if s.Range == nil {
		t.Error("Range = nil, want summary")
	}
	if len(s.ByType) != 2 {
		t.Errorf("len(ByType) = %d, want 2", len(s.ByType))
	}
}
