package types

import (
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024, wantErr: false},
		{name: "zero bytes", input: "0", want: 0, wantErr: false},
		{name: "bytes with B suffix", input: "512B", want: 512, wantErr: false},

		{name: "kilobytes", input: "100K", want: 100 * 1024, wantErr: false},
		{name: "kilobytes with KB", input: "100KB", want: 100 * 1024, wantErr: false},
		{name: "kilobytes with KiB", input: "100KiB", want: 100 * 1024, wantErr: false},

		{name: "megabytes", input: "50M", want: 50 * 1024 * 1024, wantErr: false},
		{name: "gigabytes", input: "2G", want: 2 * 1024 * 1024 * 1024, wantErr: false},
		{name: "terabytes", input: "1T", want: 1024 * 1024 * 1024 * 1024, wantErr: false},

		{name: "whitespace", input: "  100M  ", want: 100 * 1024 * 1024, wantErr: false},
		{name: "decimal values truncated", input: "1.5G", want: 1610612736, wantErr: false},

		{name: "empty string", input: "", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "letters only", input: "abc", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero", bytes: 0, want: "0 B"},
		{name: "one kibibyte", bytes: 1024, want: "1.0 KiB"},
		{name: "one and a half mebibytes", bytes: 1536 * 1024, want: "1.5 MiB"},
		{name: "one gibibyte", bytes: GiB, want: "1.0 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSize(tt.bytes); got != tt.want {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFileRecordHumanSize(t *testing.T) {
	f := FileRecord{
		Path:    "/tmp/example.bin",
		Size:    2 * MiB,
		ModTime: time.Now(),
	}

	if got := f.HumanSize(); got != "2.0 MiB" {
		t.Errorf("HumanSize() = %q, want %q", got, "2.0 MiB")
	}
}
