package prd

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseValidDocument(t *testing.T) {
	data := []byte(`{
		"feature_name": "Checkout flow",
		"description": "Add a checkout flow",
		"user_stories": [
			{"id": "US-1", "title": "Cart summary", "priority": "high"},
			{"id": "US-2", "title": "Payment form", "priority": "critical", "depends_on": ["US-1"]}
		]
	}`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.FeatureName != "Checkout flow" {
		t.Errorf("FeatureName = %q", doc.FeatureName)
	}
	if len(doc.UserStories) != 2 {
		t.Fatalf("len(UserStories) = %d, want 2", len(doc.UserStories))
	}
	if !reflect.DeepEqual(doc.UserStories[1].DependsOn, []string{"US-1"}) {
		t.Errorf("US-2.DependsOn = %v", doc.UserStories[1].DependsOn)
	}
}

func TestParseFileNotFound(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	var wantErr *ErrFileNotFound
	if err == nil {
		t.Fatal("ParseFile() error = nil, want ErrFileNotFound")
	}
	if ok := asError(err, &wantErr); !ok {
		t.Errorf("ParseFile() error = %T, want *ErrFileNotFound", err)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("not json"))
	var wantErr *ErrInvalidData
	if !asError(err, &wantErr) {
		t.Errorf("Parse() error = %T, want *ErrInvalidData", err)
	}
}

func TestParseDuplicateStoryID(t *testing.T) {
	data := []byte(`{"user_stories": [
		{"id": "US-1", "priority": "low"},
		{"id": "US-1", "priority": "low"}
	]}`)
	_, err := Parse(data)
	var wantErr *ErrDuplicateStoryID
	if !asError(err, &wantErr) {
		t.Errorf("Parse() error = %T, want *ErrDuplicateStoryID", err)
	}
}

func TestParseMissingDependency(t *testing.T) {
	data := []byte(`{"user_stories": [
		{"id": "US-1", "priority": "low", "depends_on": ["US-9"]}
	]}`)
	_, err := Parse(data)
	var wantErr *ErrMissingDependency
	if !asError(err, &wantErr) {
		t.Errorf("Parse() error = %T, want *ErrMissingDependency", err)
	}
}

func TestParseUnsupportedPriority(t *testing.T) {
	data := []byte(`{"user_stories": [{"id": "US-1", "priority": "urgent"}]}`)
	_, err := Parse(data)
	var wantErr *ErrUnsupportedPriority
	if !asError(err, &wantErr) {
		t.Errorf("Parse() error = %T, want *ErrUnsupportedPriority", err)
	}
}

func TestParseCircularDependency(t *testing.T) {
	data := []byte(`{"user_stories": [
		{"id": "US-1", "priority": "low", "depends_on": ["US-3"]},
		{"id": "US-2", "priority": "low", "depends_on": ["US-1"]},
		{"id": "US-3", "priority": "low", "depends_on": ["US-2"]}
	]}`)
	_, err := Parse(data)
	var wantErr *ErrCircularDependency
	if !asError(err, &wantErr) {
		t.Errorf("Parse() error = %T, want *ErrCircularDependency", err)
	}
}

// asError reports whether err's concrete type matches target's, assigning
// into target on success. A small stand-in for errors.As in tests that only
// care about the concrete sentinel type, not unwrapped chains.
func asError[T any](err error, target *T) bool {
	v, ok := err.(T)
	if !ok {
		return false
	}
	*target = v
	return true
}
