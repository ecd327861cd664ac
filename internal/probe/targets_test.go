package probe

import (
	"reflect"
	"testing"
)

func TestParseHosts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input    string
		want    []string
		wantErr bool
	}{
		{
			name: "single address",
			input: "192.168.1.1",
			want: []string{"192.168.1.1"},
		},
		{
			name: "list with names",
			input: "192.168.1.1, ftp.example.com ,ftp-2.example.com",
			want: []string{"192.168.1.1", "ftp.example.com", "ftp-2.example.com"},
		},
		{
			name: "last octet range",
			input: "10.0.0.253-255",
			want: []string{"10.0.0.253", "10.0.0.254", "10.0.0.255"},
		},
		{
			name: "mixed",
			input: "10.0.0.1,10.0.1.5-6",
			want: []string{"10.0.0.1", "10.0.1.5", "10.0.1.6"},
		},
		{name: "range going backwards", input: "10.0.0.9-3", wantErr: true},
		{name: "range past 255", input: "10.0.0.9-300", wantErr: true},
		{name: "range with junk", input: "10.0.0.9-x", wantErr: true},
		{name: "bad CIDR", input: "10.0.0.0/99", wantErr: true},
		{name: "empty", input: " , ", wantErr: true},
		{name: "too many hosts", input: "10.0.0.0/8", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHosts(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHosts(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHosts(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseHosts_CIDR(t *testing.T) {
	t.Parallel()
	got, err := ParseHosts("192.168.7.0/30")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 2 || len(got) > 4 {
		t.Fatalf("ParseHosts() = %v", got)
	}

	seen := make(map[string]bool)
	for _, h := range got {
		seen[h] = true
	}
	for _, want := range []string{"192.168.7.1", "192.168.7.2"} {
		if !seen[want] {
			t.Errorf("ParseHosts() = %v, missing %s", got, want)
		}
	}
}

func TestParsePorts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		want    []int
		wantErr bool
	}{
		{input: "21", want: []int{21}},
		{input: "21,2121", want: []int{21, 2121}},
		{input: "2100-2103", want: []int{2100, 2101, 2102, 2103}},
		{input: "21, 2100-2101,21", want: []int{21, 2100, 2101}},
		{input: "0", wantErr: true},
		{input: "65536", wantErr: true},
		{input: "30-20", wantErr: true},
		{input: "ftp", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePorts(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePorts(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePorts(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
