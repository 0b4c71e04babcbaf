package wizard

import "testing"

func TestResolveStatus_Priority(t *testing.T) {
	tests := []struct {
		name     string
		record   StepRecord
		isActive bool
		want     Status
	}{
		{
			name: "untouched step is not visited",
			want: StatusNotVisited,
		},
		{
			name:     "active untouched step is incomplete",
			isActive: true,
			want:     StatusIncomplete,
		},
		{
			name:   "retained errors show as has_errors",
			record: StepRecord{LastErrors: map[string]string{"customer_id": "Customer is required"}},
			want:   StatusHasErrors,
		},
		{
			name:     "retained errors win over the active pointer",
			record:   StepRecord{LastErrors: map[string]string{"customer_id": "Customer is required"}},
			isActive: true,
			want:     StatusHasErrors,
		},
		{
			name:   "completed wins over retained errors",
			record: StepRecord{Completed: true, LastErrors: map[string]string{"x": "y"}},
			want:   StatusComplete,
		},
		{
			name:   "skipped wins over completed",
			record: StepRecord{Skipped: true, Completed: true},
			want:   StatusSkipped,
		},
		{
			name:     "skipped wins over everything",
			record:   StepRecord{Skipped: true, LastErrors: map[string]string{"x": "y"}},
			isActive: true,
			want:     StatusSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStatus(tt.record, tt.isActive); got != tt.want {
				t.Errorf("ResolveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_IsInvalid(t *testing.T) {
	invalid := []Status{StatusNotVisited, StatusIncomplete, StatusHasErrors}
	valid := []Status{StatusComplete, StatusSkipped}

	for _, s := range invalid {
		if !s.IsInvalid() {
			t.Errorf("%v should be invalid", s)
		}
	}
	for _, s := range valid {
		if s.IsInvalid() {
			t.Errorf("%v should be valid", s)
		}
	}
}
