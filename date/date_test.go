package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: New(2025, time.July, 1)},
		{in: "2025-7-1", want: New(2025, time.July, 1)},
		{in: "2024-02-29", want: New(2024, time.February, 29)},
		{in: "01/07/2025", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewNormalizes(t *testing.T) {
	if got, want := New(2025, time.January, 32), New(2025, time.February, 1); got != want {
		t.Errorf("New(2025, 1, 32) = %v, want %v", got, want)
	}
	if got, want := MustParse("2025-03-01").Add(-1), MustParse("2025-02-28"); got != want {
		t.Errorf("Add(-1) = %v, want %v", got, want)
	}
}

func TestCompareAndSub(t *testing.T) {
	a, b := MustParse("2025-01-10"), MustParse("2025-01-13")
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare is not consistent for %v and %v", a, b)
	}
	if got := b.Sub(a); got != 3 {
		t.Errorf("%v.Sub(%v) = %d, want 3", b, a, got)
	}
	if !a.Before(b) || !b.After(a) {
		t.Errorf("Before/After inconsistent for %v and %v", a, b)
	}
}

func TestJSON(t *testing.T) {
	d := MustParse("2025-12-24")
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2025-12-24"` {
		t.Errorf("Marshal = %s, want %q", data, "2025-12-24")
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}
