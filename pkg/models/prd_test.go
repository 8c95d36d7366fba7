package models

import "testing"

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantOK  bool
	}{
		{"low", PriorityLow, true},
		{"MEDIUM", PriorityMedium, true},
		{"High", PriorityHigh, true},
		{"CRITICAL", PriorityCritical, true},
		{"urgent", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePriority(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParsePriority(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPriorityWeight(t *testing.T) {
	tests := []struct {
		p    Priority
		want int
	}{
		{PriorityLow, 1},
		{PriorityMedium, 5},
		{PriorityHigh, 10},
		{PriorityCritical, 20},
	}
	for _, tt := range tests {
		if got := tt.p.Weight(); got != tt.want {
			t.Errorf("%s.Weight() = %d, want %d", tt.p, got, tt.want)
		}
	}
}

func TestStoryByID(t *testing.T) {
	doc := &PRDDocument{
		UserStories: []PRDUserStory{
			{ID: "US-1", Title: "One"},
			{ID: "US-2", Title: "Two"},
		},
	}

	if s, ok := doc.StoryByID("US-2"); !ok || s.Title != "Two" {
		t.Errorf("StoryByID(US-2) = %+v, %v", s, ok)
	}
	if _, ok := doc.StoryByID("US-3"); ok {
		t.Error("StoryByID(US-3) ok = true, want false")
	}
}
