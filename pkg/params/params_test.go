package params

import "testing"

func TestDefaults(t *testing.T) {
	s := New()

	if s.LowerLimit() != 0.0 || s.UpperLimit() != 5000.0 {
		t.Errorf("Expected limits 0-5000, got %g-%g", s.LowerLimit(), s.UpperLimit())
	}
	if s.UseFilter() {
		t.Error("Expected filter off by default")
	}
	if s.FilterSigma() != 15 {
		t.Errorf("Expected sigma 15, got %d", s.FilterSigma())
	}
	if s.Commit() {
		t.Error("Expected Commit on fresh set to report no change")
	}
}

func TestCommitEachField(t *testing.T) {
	tests := []struct {
		name string
		edit func(s *Set)
	}{
		{"lower limit", func(s *Set) { s.SetLowerLimit(100) }},
		{"upper limit", func(s *Set) { s.SetUpperLimit(2500) }},
		{"use filter", func(s *Set) { s.SetUseFilter(true) }},
		{"filter sigma", func(s *Set) { s.SetFilterSigma(7) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			before := s.Committed()

			tt.edit(s)
			if s.Committed() != before {
				t.Error("Edit became visible before Commit")
			}
			if !s.Commit() {
				t.Fatal("Expected first Commit after edit to report a change")
			}
			if s.Committed() != s.Current() {
				t.Error("Committed values do not match current values after Commit")
			}
			if s.Commit() {
				t.Error("Expected repeated Commit without edits to report no change")
			}

			// Setting the same value again is not a change.
			tt.edit(s)
			if s.Commit() {
				t.Error("Expected Commit after re-applying the same value to report no change")
			}
		})
	}
}

func TestCommitRevertToPrevious(t *testing.T) {
	s := New()

	s.SetUseFilter(true)
	if !s.Commit() {
		t.Fatal("Expected change on enabling filter")
	}
	s.SetUseFilter(false)
	if !s.Commit() {
		t.Fatal("Expected change on disabling filter again")
	}
	if s.Commit() {
		t.Error("Expected no change on repeated commit")
	}
}

func TestSetterAcceptsInvertedLimits(t *testing.T) {
	s := New()
	s.SetLowerLimit(300)
	s.SetUpperLimit(100)
	if !s.Commit() {
		t.Fatal("Expected inverted limits to commit as a change")
	}
	c := s.Committed()
	if c.LowerLimit != 300 || c.UpperLimit != 100 {
		t.Errorf("Expected inverted limits to be stored as given, got %v", c)
	}
}

func TestSetString(t *testing.T) {
	tests := []struct {
		field   Field
		text    string
		want    any
		wantErr bool
	}{
		{LowerLimit, "12.5", 12.5, false},
		{UpperLimit, " 4000 ", 4000.0, false},
		{UseFilter, "true", true, false},
		{FilterSigma, "3", 3, false},
		{FilterSigma, "-2", -2, false},
		{LowerLimit, "abc", nil, true},
		{UseFilter, "maybe", nil, true},
		{FilterSigma, "1.5", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.field.String()+"="+tt.text, func(t *testing.T) {
			s := New()
			err := s.SetString(tt.field, tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && s.Get(tt.field) != tt.want {
				t.Errorf("Get(%s) = %v, want %v", tt.field, s.Get(tt.field), tt.want)
			}
		})
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		got, err := ParseField(f.String())
		if err != nil {
			t.Fatalf("ParseField(%q) failed: %v", f.String(), err)
		}
		if got != f {
			t.Errorf("ParseField(%q) = %v, want %v", f.String(), got, f)
		}
	}
	if _, err := ParseField("figsize"); err == nil {
		t.Error("Expected error for unknown field")
	}
}

func TestApplyDoesNotCommit(t *testing.T) {
	s := New()
	snap := Snapshot{LowerLimit: 1, UpperLimit: 2, UseFilter: true, FilterSigma: 3}
	s.Apply(snap)
	if s.Current() != snap {
		t.Errorf("Current() = %v, want %v", s.Current(), snap)
	}
	if s.Committed() == snap {
		t.Error("Apply must not commit")
	}
	if !s.Commit() {
		t.Error("Expected Commit after Apply to report a change")
	}
}

func TestCommitNegativeZeroLimits(t *testing.T) {
	s := NewFrom(Snapshot{LowerLimit: 0, UpperLimit: 0, FilterSigma: 15})

	if err := s.SetString(LowerLimit, "-0"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetString(UpperLimit, "-0"); err != nil {
		t.Fatal(err)
	}
	if s.Commit() {
		t.Error("Expected -0 limits to equal 0 limits")
	}
}
