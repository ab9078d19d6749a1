package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecurrencePattern_Next(t *testing.T) {
	tests := []struct {
		pattern RecurrencePattern
		from    time.Time
		want    time.Time
	}{
		{RecurDaily, day(2023, time.December, 31), day(2024, time.January, 1)},
		{RecurWeekly, day(2023, time.February, 25), day(2023, time.March, 4)},
		{RecurMonthly, day(2023, time.March, 15), day(2023, time.April, 15)},
		{RecurMonthly, day(2023, time.January, 31), day(2023, time.February, 28)},
		{RecurMonthly, day(2024, time.January, 30), day(2024, time.February, 29)},
		{RecurMonthly, day(2023, time.August, 31), day(2023, time.September, 30)},
		{"yearly", day(2023, time.March, 15), day(2023, time.March, 15)},
	}
	for _, tt := range tests {
		if got := tt.pattern.Next(tt.from); !got.Equal(tt.want) {
			t.Errorf("%s.Next(%s) = %s, want %s", tt.pattern, tt.from.Format(time.DateOnly), got.Format(time.DateOnly), tt.want.Format(time.DateOnly))
		}
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 9, 30, 0, 0, time.UTC)
}

func TestTransactionFilter_Match(t *testing.T) {
	tx := &Transaction{
		UserID:   7,
		Kind:     KindExpense,
		Category: "Food",
		Tags:     []string{"family"},
		Date:     day(2023, time.October, 31),
	}

	tests := []struct {
		name   string
		filter TransactionFilter
		want   bool
	}{
		{"empty filter", TransactionFilter{}, true},
		{"other user", TransactionFilter{UserID: 8}, false},
		{"kind", TransactionFilter{Kind: KindIncome}, false},
		{"category", TransactionFilter{UserID: 7, Category: "Food"}, true},
		{"inclusive bounds", TransactionFilter{From: tx.Date, To: tx.Date}, true},
		{"before window", TransactionFilter{From: day(2023, time.November, 1)}, false},
		{"after window", TransactionFilter{To: day(2023, time.October, 30)}, false},
		{"any tag", TransactionFilter{AnyTags: []string{"work", "family"}}, true},
		{"no tag", TransactionFilter{AnyTags: []string{"work"}}, false},
		{"recurring only", TransactionFilter{RecurringOnly: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tx); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransactionPatch_Apply(t *testing.T) {
	tx := &Transaction{Kind: KindExpense, Amount: 10, Category: "Food", Tags: []string{"a"}}
	amount := 12.5
	tags := []string{"b", "c"}
	TransactionPatch{Amount: &amount, Tags: &tags}.Apply(tx)

	if tx.Amount != 12.5 || tx.Category != "Food" || tx.Kind != KindExpense {
		t.Errorf("unexpected transaction %+v", tx)
	}
	tags[0] = "mutated"
	if tx.Tags[0] != "b" || len(tx.Tags) != 2 {
		t.Errorf("tags = %v, want an independent copy of [b c]", tx.Tags)
	}
}

func TestPercentScale(t *testing.T) {
	if _, err := ParsePercentScale("basis-points"); err == nil {
		t.Error("expected error for unknown scale")
	}
	scale, err := ParsePercentScale("fraction")
	if err != nil || scale != ScaleFraction {
		t.Fatalf("ParsePercentScale(fraction) = %q, %v", scale, err)
	}
	if got := ScaleFraction.Multiplier(0.25); got != 0.25 {
		t.Errorf("fraction multiplier = %v, want 0.25", got)
	}
	if got := ScalePercent.Multiplier(25); got != 0.25 {
		t.Errorf("percent multiplier = %v, want 0.25", got)
	}
}

func TestParseMonthToken(t *testing.T) {
	got, err := ParseMonthToken("2023-10")
	if err != nil {
		t.Fatalf("ParseMonthToken: %v", err)
	}
	if MonthToken(got) != "2023-10" {
		t.Errorf("round trip = %q", MonthToken(got))
	}
	for _, bad := range []string{"", "2023-13", "10-2023", "2023/10"} {
		if _, err := ParseMonthToken(bad); err == nil {
			t.Errorf("ParseMonthToken(%q) accepted", bad)
		}
	}
}

func TestMonthToken_UsesUTC(t *testing.T) {
	local := time.Date(2023, time.October, 31, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*60*60))
	if got := MonthToken(local); got != "2023-11" {
		t.Errorf("MonthToken = %q, want 2023-11", got)
	}
}

func TestNewTransaction_DateFormats(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    time.Time
		wantErr bool
	}{
		{"date only", `{"kind":"expense","amount":5,"date":"2023-10-20"}`, time.Date(2023, time.October, 20, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", `{"kind":"expense","amount":5,"date":"2023-10-20T10:00:00+02:00"}`, time.Date(2023, time.October, 20, 8, 0, 0, 0, time.UTC), false},
		{"missing", `{"kind":"expense","amount":5}`, time.Time{}, false},
		{"unsupported", `{"kind":"expense","amount":5,"date":"20/10/2023"}`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in NewTransaction
			err := json.Unmarshal([]byte(tt.body), &in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !in.Date.Equal(tt.want) {
				t.Errorf("date = %s, want %s", in.Date, tt.want)
			}
			if in.Kind != KindExpense || in.Amount != 5 {
				t.Errorf("other fields lost: %+v", in)
			}
		})
	}
}

func TestTransactionPatch_DateFormats(t *testing.T) {
	var p TransactionPatch
	if err := json.Unmarshal([]byte(`{"date":"2023-10-21","category":"Rent"}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Date == nil || !p.Date.Equal(time.Date(2023, time.October, 21, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", p.Date)
	}
	if p.Category == nil || *p.Category != "Rent" {
		t.Errorf("category = %v", p.Category)
	}

	var noDate TransactionPatch
	if err := json.Unmarshal([]byte(`{"amount":3}`), &noDate); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if noDate.Date != nil || noDate.Amount == nil || *noDate.Amount != 3 {
		t.Errorf("patch = %+v", noDate)
	}
}
