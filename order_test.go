package cursorpaging

import "testing"

func Test_Order_Valid_And_Operator(t *testing.T) {
	tests := []struct {
		name     string
		in       Order
		valid    bool
		operator Operator
	}{
		{"ASC valid maps to GT", OrderASC, true, OperatorGT},
		{"DESC valid maps to LT", OrderDESC, true, OperatorLT},
		{"lower case is invalid", Order("asc"), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Valid(); got != tt.valid {
				t.Errorf("%s: Valid=%v want %v", tt.name, got, tt.valid)
			}
			if tt.valid {
				if got := tt.in.Operator(); got != tt.operator || !got.Valid() {
					t.Errorf("%s: Operator=%v want %v", tt.name, got, tt.operator)
				}
			}
		})
	}
}

func Test_ParseOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    Order
		wantErr bool
	}{
		{"asc", OrderASC, false},
		{" Desc ", OrderDESC, false},
		{"up", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrder(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseOrder(%q) = (%v, %v) want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
			}
		})
	}
}
