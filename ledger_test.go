package crowdfund

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLedger_Append(t *testing.T) {
	l := NewMemoryStore().Ledger()

	testCases := []struct {
		name    string
		pledge  Pledge
		wantID  int64
		wantErr bool
	}{
		{name: "success", pledge: Pledge{BackerID: 1, ProjectID: "P1", Amount: D("10"), Status: Success}, wantID: 1},
		{name: "rejected negative", pledge: Pledge{BackerID: 1, ProjectID: "P1", Amount: D("-1"), Status: Rejected, Reason: "invalid amount"}, wantID: 2},
		{name: "rejected unknown project", pledge: Pledge{BackerID: 2, ProjectID: "nope", Amount: D("1"), Status: Rejected}, wantID: 3},
		{name: "preset id", pledge: Pledge{ID: 9, BackerID: 1, ProjectID: "P1", Amount: D("10"), Status: Success}, wantErr: true},
		{name: "missing status", pledge: Pledge{BackerID: 1, ProjectID: "P1", Amount: D("10")}, wantErr: true},
		{name: "success without amount", pledge: Pledge{BackerID: 1, ProjectID: "P1", Amount: D("0"), Status: Success}, wantErr: true},
		{name: "after failures", pledge: Pledge{BackerID: 3, ProjectID: "P2", Amount: D("5"), Status: Success, RewardTierID: Tier(4)}, wantID: 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := l.Append(tc.pledge)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Append() error = %v, wantErr %v", err, tc.wantErr)
			}
			if id != tc.wantID {
				t.Errorf("Append() = %d, want %d", id, tc.wantID)
			}
		})
	}
}

func TestLedger_Queries(t *testing.T) {
	l := NewMemoryStore().Ledger()
	for _, p := range []Pledge{
		{BackerID: 1, ProjectID: "P1", Amount: D("10"), Status: Success, RewardTierID: Tier(1)},
		{BackerID: 2, ProjectID: "P1", Amount: D("20"), Status: Rejected, RewardTierID: Tier(1)},
		{BackerID: 1, ProjectID: "P2", Amount: D("30"), Status: Success},
		{BackerID: 2, ProjectID: "P1", Amount: D("40"), Status: Success},
	} {
		if _, err := l.Append(p); err != nil {
			t.Fatal(err)
		}
	}

	ids := func(list []Pledge, err error) []int64 {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		var ids []int64
		for _, p := range list {
			ids = append(ids, p.ID)
		}
		return ids
	}

	testCases := []struct {
		name string
		got  []int64
		want []int64
	}{
		{"all", ids(l.All()), []int64{1, 2, 3, 4}},
		{"by backer", ids(l.ListByBacker(1)), []int64{1, 3}},
		{"by project", ids(l.ListByProject("P1")), []int64{1, 2, 4}},
		{"by status", ids(l.ListByStatus(Rejected)), []int64{2}},
		{"successful by project", ids(l.ListSuccessfulByProject("P1")), []int64{1, 4}},
		{"rejected by project", ids(l.ListRejectedByProject("P1")), []int64{2}},
		{"by reward tier", ids(l.Pledges(ByRewardTier(1))), []int64{1, 2}},
		{"combined", ids(l.Pledges(ByRewardTier(1), ByStatus(Success))), []int64{1}},
		{"no match", ids(l.ListByBacker(99)), nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.got); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"SUCCESS", Success, false},
		{"success", Success, false},
		{"REJECTED", Rejected, false},
		{"rejected", Rejected, false},
		{"PENDING", "", true},
		{"", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseStatus(tc.in)
			if (err != nil) != tc.wantErr || got != tc.want {
				t.Errorf("ParseStatus(%q) = %q, %v, want %q", tc.in, got, err, tc.want)
			}
		})
	}
}
