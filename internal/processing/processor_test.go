package processing

import (
	"errors"
	"testing"
)

type fakeStore struct {
	values map[int]float64
	calls  []int
}

func (f *fakeStore) CurrentValue(idx int) (float64, error) {
	f.calls = append(f.calls, idx)
	value, ok := f.values[idx]
	if !ok {
		return 0, errors.New("no such device")
	}
	return value, nil
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name      string
		store     map[int]float64
		value     float64
		param     Parameter
		want      float64
		wantErr   bool
		wantCalls []int
	}{
		{
			name:  "overwrite passes the value through",
			value: 1234.5,
			param: Parameter{Idx: 370, Mode: ModeOverwrite},
			want:  1234.5,
		},
		{
			name:  "overwrite rounds to two decimals",
			value: 58.614,
			param: Parameter{Idx: 370, Mode: ModeOverwrite},
			want:  58.61,
		},
		{
			name:      "subtract removes the baseline",
			store:     map[int]float64{371: 10.5},
			value:     58.61,
			param:     Parameter{Idx: 370, Mode: ModeSubtract, CompareIdx: 371},
			want:      48.11,
			wantCalls: []int{371},
		},
		{
			name:      "subtract can go negative",
			store:     map[int]float64{371: 100},
			value:     40,
			param:     Parameter{Idx: 370, Mode: ModeSubtract, CompareIdx: 371},
			want:      -60,
			wantCalls: []int{371},
		},
		{
			name:      "add extends the stored counter",
			store:     map[int]float64{370: 100, 371: 10},
			value:     12.5,
			param:     Parameter{Idx: 370, Mode: ModeAdd, CompareIdx: 371},
			want:      102.5,
			wantCalls: []int{370, 371},
		},
		{
			name:    "subtract fails without the comparison device",
			store:   map[int]float64{},
			value:   1,
			param:   Parameter{Idx: 370, Mode: ModeSubtract, CompareIdx: 371},
			wantErr: true,
		},
		{
			name:    "add fails without the target device",
			store:   map[int]float64{371: 10},
			value:   1,
			param:   Parameter{Idx: 370, Mode: ModeAdd, CompareIdx: 371},
			wantErr: true,
		},
		{
			name:    "unknown mode fails",
			value:   1,
			param:   Parameter{Idx: 370, Mode: Mode(9)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{values: tt.store}
			processor := NewProcessor(store)

			got, err := processor.Process(tt.value, tt.param)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Process() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("Process() = %v, want %v", got, tt.want)
			}
			if tt.wantCalls != nil {
				if len(store.calls) != len(tt.wantCalls) {
					t.Fatalf("store calls = %v, want %v", store.calls, tt.wantCalls)
				}
				for i, idx := range tt.wantCalls {
					if store.calls[i] != idx {
						t.Errorf("store calls = %v, want %v", store.calls, tt.wantCalls)
						break
					}
				}
			}
		})
	}
}

func TestProcessOverwriteSkipsStore(t *testing.T) {
	store := &fakeStore{}
	processor := NewProcessor(store)

	if _, err := processor.Process(5, Parameter{Idx: 1, Mode: ModeOverwrite}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("overwrite mode queried the store: %v", store.calls)
	}
}
