package processing

import (
	"reflect"
	"testing"
)

func TestParseParameter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Parameter
		wantErr bool
	}{
		{
			name:  "overwrite with hex register",
			input: "370:0x003C:0",
			want:  Parameter{Idx: 370, Register: 0x003C, Mode: ModeOverwrite},
		},
		{
			name:  "overwrite with decimal register",
			input: "370:60:0",
			want:  Parameter{Idx: 370, Register: 60, Mode: ModeOverwrite},
		},
		{
			name:  "subtract with comparison device",
			input: "370:60:1:371",
			want:  Parameter{Idx: 370, Register: 60, Mode: ModeSubtract, CompareIdx: 371},
		},
		{
			name:  "add with comparison device",
			input: "370:0x0050:2:371",
			want:  Parameter{Idx: 370, Register: 0x0050, Mode: ModeAdd, CompareIdx: 371},
		},
		{
			name:  "overwrite tolerates an unused comparison idx",
			input: "370:60:0:371",
			want:  Parameter{Idx: 370, Register: 60, Mode: ModeOverwrite, CompareIdx: 371},
		},
		{
			name:    "subtract without comparison device",
			input:   "370:60:1",
			wantErr: true,
		},
		{
			name:    "add without comparison device",
			input:   "370:60:2",
			wantErr: true,
		},
		{
			name:    "unknown mode",
			input:   "370:60:5",
			wantErr: true,
		},
		{
			name:    "too few fields",
			input:   "370:60",
			wantErr: true,
		},
		{
			name:    "too many fields",
			input:   "370:60:0:371:9",
			wantErr: true,
		},
		{
			name:    "idx not a number",
			input:   "x:60:0",
			wantErr: true,
		},
		{
			name:    "register not a number",
			input:   "370:0xZZ:0",
			wantErr: true,
		},
		{
			name:    "register exceeds 16 bits",
			input:   "370:0x10000:0",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParameter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParameter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseParameter(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseParameters(t *testing.T) {
	params, err := ParseParameters([]string{"370:60:0", "371:0x0050:1:372"})
	if err != nil {
		t.Fatalf("ParseParameters error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("got %d parameters, want 2", len(params))
	}
	if params[1].Mode != ModeSubtract || params[1].CompareIdx != 372 {
		t.Errorf("params[1] = %+v", params[1])
	}

	if _, err := ParseParameters([]string{"370:60:0", "bad"}); err == nil {
		t.Error("ParseParameters should fail on an invalid entry")
	}
}

func TestRegistersDeduplicatesAndSorts(t *testing.T) {
	params := []Parameter{
		{Idx: 1, Register: 0x0050, Mode: ModeOverwrite},
		{Idx: 2, Register: 0x003C, Mode: ModeOverwrite},
		{Idx: 3, Register: 0x0050, Mode: ModeSubtract, CompareIdx: 4},
	}

	got := Registers(params)
	want := []uint16{0x003C, 0x0050}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Registers() = %v, want %v", got, want)
	}
}

func TestForRegister(t *testing.T) {
	params := []Parameter{
		{Idx: 1, Register: 0x0050},
		{Idx: 2, Register: 0x003C},
		{Idx: 3, Register: 0x0050},
	}

	got := ForRegister(params, 0x0050)
	if len(got) != 2 || got[0].Idx != 1 || got[1].Idx != 3 {
		t.Errorf("ForRegister() = %+v", got)
	}
	if len(ForRegister(params, 0x9999)) != 0 {
		t.Error("ForRegister() should return nothing for an unused register")
	}
}

func TestParameterString(t *testing.T) {
	plain := Parameter{Idx: 370, Register: 0x003C, Mode: ModeOverwrite}
	if got := plain.String(); got != "370:0x003C:0" {
		t.Errorf("String() = %q, want 370:0x003C:0", got)
	}

	withCompare := Parameter{Idx: 370, Register: 0x0050, Mode: ModeAdd, CompareIdx: 371}
	if got := withCompare.String(); got != "370:0x0050:2:371" {
		t.Errorf("String() = %q, want 370:0x0050:2:371", got)
	}
}

func TestModeString(t *testing.T) {
	if ModeOverwrite.String() != "overwrite" || ModeSubtract.String() != "subtract" || ModeAdd.String() != "add" {
		t.Error("mode names changed")
	}
	if Mode(9).String() != "Mode(9)" {
		t.Errorf("Mode(9).String() = %q", Mode(9).String())
	}
}
