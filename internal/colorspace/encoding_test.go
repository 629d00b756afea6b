package colorspace

import "testing"

func TestParseDescription(t *testing.T) {
	tests := []struct {
		desc string
		want Encoding
	}{
		{"RGB_D65_SRG_Rel_SRG", SRGB(false)},
		{"RGB_D65_SRG_Rel_Lin", LinearSRGB(false)},
		{"Gra_D65_Rel_SRG", SRGB(true)},
		{"Gra_D65_Rel_Lin", LinearSRGB(true)},
		{"RGB_D65_202_Rel_PQ", Encoding{
			Primaries:  PrimariesBT2100,
			WhitePoint: WhitePointD65,
			Transfer:   Transfer{Kind: TransferPQ},
		}},
		{"RGB_D50_DCI_Per_709", Encoding{
			Primaries:  PrimariesP3,
			WhitePoint: WhitePointD50,
			Transfer:   Transfer{Kind: Transfer709},
		}},
		{"Gra_D65_Rel_g2.2", Encoding{
			Gray:       true,
			WhitePoint: WhitePointD65,
			Transfer:   Transfer{Kind: TransferGamma, Gamma: 2.2},
		}},
	}

	for _, tt := range tests {
		got, err := ParseDescription(tt.desc)
		if err != nil {
			t.Errorf("ParseDescription(%q) failed: %v", tt.desc, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDescription(%q) = %+v, want %+v", tt.desc, got, tt.want)
		}
	}
}

func TestParseDescription_Invalid(t *testing.T) {
	for _, desc := range []string{
		"",
		"XYZ_D65_SRG_Rel_SRG",
		"RGB_D65_SRG_Rel",      // missing transfer
		"RGB_D65_Rel_SRG",      // missing primaries
		"RGB_D65_SRG_Rel_gfoo", // bad gamma
		"RGB_D65_SRG_Rel_g0",   // zero gamma
		"RGB_D99_SRG_Rel_SRG",  // bad white point
		"Gra_D65_SRG_Rel_SRG",  // gray with primaries token
	} {
		if _, err := ParseDescription(desc); err == nil {
			t.Errorf("ParseDescription(%q) succeeded, want error", desc)
		}
	}
}

func TestEncodingEquality(t *testing.T) {
	if !SRGB(false).Equal(SRGB(false)) {
		t.Error("structurally identical encodings must compare equal")
	}
	if SRGB(false).Equal(SRGB(true)) {
		t.Error("gray flag must participate in equality")
	}
	if SRGB(false).Equal(LinearSRGB(false)) {
		t.Error("transfer function must participate in equality")
	}
}

func TestDescriptionRoundTrip(t *testing.T) {
	for _, enc := range []Encoding{
		SRGB(false), LinearSRGB(false), SRGB(true), LinearSRGB(true),
	} {
		got, err := ParseDescription(enc.String())
		if err != nil {
			t.Errorf("round trip of %v failed: %v", enc, err)
			continue
		}
		if !got.Equal(enc) {
			t.Errorf("round trip of %v = %v", enc, got)
		}
	}
}
