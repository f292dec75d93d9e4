package gcs

import "testing"

func TestExtractFilenameFromGCSURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/folder/input.json", "input.json"},
		{"gs://bucket/input.json", "input.json"},
		{"gs://bucket/a/b/c/report.json", "report.json"},
		{"gs://bucket-only", "bucket-only"},
		{"plain-name.json", "plain-name.json"},
	}

	for _, tt := range tests {
		if got := ExtractFilenameFromGCSURI(tt.uri); got != tt.want {
			t.Errorf("ExtractFilenameFromGCSURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestSplitGCSURI(t *testing.T) {
	bucket, object, err := splitGCSURI("gs://my-bucket/path/to/input.json")
	if err != nil {
		t.Fatalf("splitGCSURI: %v", err)
	}
	if bucket != "my-bucket" || object != "path/to/input.json" {
		t.Errorf("got %q/%q", bucket, object)
	}

	for _, uri := range []string{"my-bucket/input.json", "gs://bucket-without-object", ""} {
		if _, _, err := splitGCSURI(uri); err == nil {
			t.Errorf("splitGCSURI(%q) accepted", uri)
		}
	}
}
