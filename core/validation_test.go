package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateRecord(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		record  Record
		wantErr error
	}{
		{
			name:    "valid issue",
			record:  Issue{ID: "10001", Key: "SUBS-482", Summary: "Billing retries", Updated: validTime},
			wantErr: nil,
		},
		{
			name:    "valid issue without key",
			record:  Issue{ID: "10002", Summary: "Partial payload", Updated: validTime},
			wantErr: nil,
		},
		{
			name:    "valid transcript without duration",
			record:  Transcript{ID: "m-1", Title: "Weekly sync", Started: validTime},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "missing id",
			record:  Page{Slug: "runbooks/oncall", Updated: validTime},
			wantErr: ErrEmptyRecordID,
		},
		{
			name:    "future timestamp",
			record:  Message{ID: "1700000000.0001", Channel: "C042", Posted: futureTime},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRecord() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRecord() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("ValidateRecord() error = %v, want wrapped ErrInvalidRecord", err)
			}
		})
	}
}

func TestValidateSource(t *testing.T) {
	for _, source := range Sources {
		if err := ValidateSource(source); err != nil {
			t.Errorf("ValidateSource(%q) = %v, want nil", source, err)
		}
	}

	err := ValidateSource(Source("gopher"))
	if !errors.Is(err, ErrInvalidSource) {
		t.Errorf("ValidateSource(gopher) = %v, want ErrInvalidSource", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"valid range", start, end, false},
		{"zero start", time.Time{}, end, true},
		{"zero end", start, time.Time{}, true},
		{"inverted", end, start, true},
		{"equal bounds", start, start, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateRange(tt.start, tt.end)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateRange) {
					t.Errorf("ValidateDateRange() = %v, want ErrInvalidDateRange", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateDateRange() = %v, want nil", err)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Now().Add(-time.Minute)) {
		t.Error("past timestamp rejected")
	}
	if !IsValidTimestamp(time.Now().Add(time.Minute)) {
		t.Error("timestamp within skew tolerance rejected")
	}
	if IsValidTimestamp(time.Now().Add(time.Hour)) {
		t.Error("far-future timestamp accepted")
	}
}

func TestIsTicketKey(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"SUBS-482", true},
		{"subs-482", true},
		{"ACME-1", true},
		{"2024-11-01", false}, // date: three tokens, first numeric
		{"2024-11", false},    // first token numeric
		{"X-12-34", false},    // three tokens
		{"SUBS-", false},
		{"-482", false},
		{"SUBS482", false},
		{"A1-23", false}, // first token not all-alphabetic
		{"SUBS-48a", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsTicketKey(tt.token); got != tt.want {
			t.Errorf("IsTicketKey(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}
