package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"default", false},
		{"lecture-notes", false},
		{"print_a4", false},
		{"Minimal2", false},
		{strings.Repeat("s", maxAssetNameLength), false},

		{"", true},
		{strings.Repeat("s", maxAssetNameLength+1), true},
		{"../default", true},
		{"styles/default", true},
		{"styles\\default", true},
		{"default.css", true},
		{"..", true},
		{"de fault", true},
		{"default\x00", true},
		{"stylé", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if tt.wantErr != errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("ValidateAssetName(%q) = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
