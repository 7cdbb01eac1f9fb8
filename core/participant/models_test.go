package participant

import "testing"

func TestTrack_Valid(t *testing.T) {
	if !TrackKediri.Valid() || !TrackKertosono.Valid() {
		t.Error("known tracks must be valid")
	}
	if Track("bandung").Valid() {
		t.Error("unknown track must be invalid")
	}
}

func TestParticipant_PriorRecordBy(t *testing.T) {
	p := Participant{
		ID: 101,
		AcademicRecords: []AcademicRecord{
			{GuruID: 1, Outcome: OutcomeDiscuss, DurationMinutes: 5},
			{GuruID: 2, Outcome: OutcomeFail, DurationMinutes: 9},
		},
	}

	rec, ok := p.PriorRecordBy(2)
	if !ok {
		t.Fatal("PriorRecordBy(2) not found")
	}
	if rec.DurationMinutes != 9 || rec.Outcome != OutcomeFail {
		t.Errorf("PriorRecordBy(2) = %+v, want guru 2's record", rec)
	}

	if _, ok := p.PriorRecordBy(3); ok {
		t.Error("PriorRecordBy(3) found, want none")
	}
	if _, ok := (Participant{}).PriorRecordBy(1); ok {
		t.Error("PriorRecordBy on a record-less participant found something")
	}
}

func TestSearchFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter SearchFilter
		want   bool
	}{
		{name: "zero value", filter: SearchFilter{}, want: true},
		{name: "whitespace only", filter: SearchFilter{Name: "   ", Search: "\t"}, want: true},
		{name: "name set", filter: SearchFilter{Name: "ahmad"}, want: false},
		{name: "gender only", filter: SearchFilter{Gender: "Putra"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Clean()
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchFilter_Clean(t *testing.T) {
	f := SearchFilter{Name: "  Ahmad  ", Category: "  Reguler ", Gender: "PUTRA"}
	f.Clean()
	if f.Name != "Ahmad" {
		t.Errorf("Name = %q, want trimmed with case kept", f.Name)
	}
	if f.Category != "reguler" || f.Gender != "putra" {
		t.Errorf("Category/Gender = %q/%q, want lowered", f.Category, f.Gender)
	}
}

func TestSearchFilter_Values(t *testing.T) {
	f := SearchFilter{Name: "ahmad", RegistrationNo: "KD-0101"}
	v := f.Values()
	if got := v.Get("filter[nama]"); got != "ahmad" {
		t.Errorf("filter[nama] = %q, want %q", got, "ahmad")
	}
	if got := v.Get("filter[no_pendaftaran]"); got != "KD-0101" {
		t.Errorf("filter[no_pendaftaran] = %q, want %q", got, "KD-0101")
	}
	if v.Get("filter[search]") != "" || v.Get("filter[kategori]") != "" {
		t.Error("blank fields must not be encoded")
	}
}
