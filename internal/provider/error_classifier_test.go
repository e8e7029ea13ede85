package provider

import "testing"

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		body          string
		wantNil       bool
		wantPermanent bool
	}{
		{"success is not an error", 201, "", true, false},
		{"400 with invalid number", 400, `{"message":"Invalid number: +1555"}`, false, true},
		{"400 without indicator", 400, `{"message":"something odd"}`, false, false},
		{"401 unauthorized", 401, "", false, true},
		{"404 not found", 404, "", false, true},
		{"429 rate limited", 429, "", false, false},
		{"500 generic", 500, "internal error", false, false},
		{"500 auth misconfiguration", 500, "Invalid API key", false, true},
		{"503 unavailable", 503, "", false, false},
		{"422 other 4xx", 422, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := ClassifyHTTPError("twilio", tt.statusCode, tt.body)
			if tt.wantNil {
				if pe != nil {
					t.Fatalf("expected nil, got %+v", pe)
				}
				return
			}
			if pe == nil {
				t.Fatal("expected a classified error, got nil")
			}
			if pe.Permanent != tt.wantPermanent {
				t.Errorf("Permanent = %v, want %v", pe.Permanent, tt.wantPermanent)
			}
			if pe.Provider != "twilio" || pe.StatusCode != tt.statusCode {
				t.Errorf("classified error = %+v", pe)
			}
		})
	}
}
