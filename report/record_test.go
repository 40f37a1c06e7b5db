package report

import "testing"

func TestHitRecordAccessors(t *testing.T) {
	rep := &Report{DBType: "protein", Database: "swissprot"}
	hit := &Hit{
		SeqID:       "sp|P12345|AATM_RABIT",
		Title:       "aspartate aminotransferase",
		Coordinates: Coordinates{QueryStart: 1, QueryEnd: 240, HitStart: 5, HitEnd: 244},
	}

	rec := HitRecord{Hit: hit, Report: rep}
	if got := rec.ID(); got != hit.SeqID {
		t.Errorf("got ID %q; want %q", got, hit.SeqID)
	}
	if got := rec.Title(); got != hit.Title {
		t.Errorf("got title %q; want %q", got, hit.Title)
	}
	if got := rec.DBType(); got != "protein" {
		t.Errorf("got db type %q; want %q", got, "protein")
	}
	if got := rec.WhichDB(); got != "swissprot" {
		t.Errorf("got database %q; want %q", got, "swissprot")
	}
	qs, qe, hs, he := rec.Coordinates()
	if qs != 1 || qe != 240 || hs != 5 || he != 244 {
		t.Errorf("got coordinates (%d,%d,%d,%d); want (1,240,5,244)", qs, qe, hs, he)
	}
}
