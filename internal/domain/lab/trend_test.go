package lab

import "testing"

func trendFixture() []Record {
	return []Record{
		{
			TestName:   "Hb",
			MostRecent: Reading{Value: "130"},
			Trending:   []Reading{{Value: "140"}, {Value: "150"}},
			ShowInNote: true,
		},
		{TestName: "Na", MostRecent: Reading{Value: "139"}, ShowInNote: true},
	}
}

func TestIncreaseTrend_Bounded(t *testing.T) {
	recs := trendFixture()
	for i := 0; i < 5; i++ {
		recs = IncreaseTrend(recs, "Hb")
	}
	if recs[0].TrendCount != 2 {
		t.Errorf("expected trendCount capped at 2, got %d", recs[0].TrendCount)
	}
	if !recs[0].ShowTrending {
		t.Error("expected showTrending after increase")
	}
	if recs[1].TrendCount != 0 {
		t.Error("other records must be untouched")
	}
}

func TestDecreaseTrend_Bounded(t *testing.T) {
	recs := IncreaseTrend(trendFixture(), "Hb")
	for i := 0; i < 5; i++ {
		recs = DecreaseTrend(recs, "Hb")
	}
	if recs[0].TrendCount != 0 {
		t.Errorf("expected trendCount floored at 0, got %d", recs[0].TrendCount)
	}
	if recs[0].ShowTrending {
		t.Error("expected showTrending false at zero")
	}
}

func TestTrendMutators_ClampOutOfRangeCount(t *testing.T) {
	stale := []Record{{TestName: "Hb", Trending: []Reading{{Value: "140"}}, TrendCount: 5, ShowTrending: true}}

	dec := DecreaseTrend(stale, "Hb")
	if dec[0].TrendCount != 0 || dec[0].ShowTrending {
		t.Errorf("expected decrease from a clamped count of 1, got %+v", dec[0])
	}

	inc := IncreaseTrend(stale, "Hb")
	if inc[0].TrendCount != 1 || !inc[0].ShowTrending {
		t.Errorf("expected increase capped at 1, got %+v", inc[0])
	}

	negative := []Record{{TestName: "Hb", Trending: []Reading{{Value: "140"}}, TrendCount: -3}}
	if got := DecreaseTrend(negative, "Hb")[0].TrendCount; got != 0 {
		t.Errorf("expected negative count floored at 0, got %d", got)
	}
}

func TestIncreaseTrend_NoTrendingStaysHidden(t *testing.T) {
	recs := IncreaseTrend(trendFixture(), "Na")
	if recs[1].TrendCount != 0 || recs[1].ShowTrending {
		t.Errorf("record without trend must stay at zero: %+v", recs[1])
	}
}

func TestTrendMutators_ExactNameMatch(t *testing.T) {
	recs := IncreaseTrend(trendFixture(), "hb")
	if recs[0].TrendCount != 0 {
		t.Error("trend mutators match the test name exactly")
	}
}

func TestTrendMutators_DoNotModifyInput(t *testing.T) {
	in := trendFixture()
	_ = IncreaseTrend(in, "Hb")
	_ = ToggleShowInNote(in, "Hb")
	if in[0].TrendCount != 0 || !in[0].ShowInNote {
		t.Errorf("input mutated: %+v", in[0])
	}
}

func TestToggleShowInNote_CaseInsensitive(t *testing.T) {
	recs := ToggleShowInNote(trendFixture(), "HB")
	if recs[0].ShowInNote {
		t.Error("expected Hb hidden from note")
	}
	recs = ToggleShowInNote(recs, "hb")
	if !recs[0].ShowInNote {
		t.Error("expected Hb shown again")
	}
}

func TestCarryState(t *testing.T) {
	prev := []Record{{
		TestName:     "Hb",
		Trending:     []Reading{{Value: "1"}, {Value: "2"}, {Value: "3"}},
		TrendCount:   3,
		ShowTrending: true,
		ShowInNote:   false,
	}}
	next := []Record{
		{TestName: "HB", Trending: []Reading{{Value: "1"}, {Value: "2"}}, ShowInNote: true},
		{TestName: "Na", ShowInNote: true},
	}

	got := CarryState(prev, next)
	if got[0].TrendCount != 2 || !got[0].ShowTrending || got[0].ShowInNote {
		t.Errorf("state not carried onto Hb: %+v", got[0])
	}
	if !got[1].ShowInNote || got[1].TrendCount != 0 {
		t.Errorf("unrelated record changed: %+v", got[1])
	}
}
