package shared

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tc := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "basic normalization",
			query: "Ambient Piano",
			want:  "ambient piano",
		},
		{
			name:  "extra whitespace",
			query: "  Ambient   Piano  ",
			want:  "ambient piano",
		},
		{
			name:  "mixed case",
			query: "AmBiEnT pIaNo",
			want:  "ambient piano",
		},
		{
			name:  "empty",
			query: "   ",
			want:  "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeQuery(tt.query)
			if got != tt.want {
				t.Errorf("NormalizeQuery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}

	if a == b {
		t.Errorf("expected distinct IDs, got %s twice", a)
	}
}
