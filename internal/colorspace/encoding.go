package colorspace

import (
	"fmt"
	"strconv"
	"strings"
)

// Encoding identifies a color encoding: gray/RGB, primaries, white point and
// transfer function. Equality is structural; two encodings produced
// independently compare equal when all fields match.

// Primaries identifies the RGB primary chromaticities.
type Primaries int

const (
	PrimariesSRGB Primaries = iota
	PrimariesP3
	PrimariesBT2100
)

func (p Primaries) String() string {
	switch p {
	case PrimariesSRGB:
		return "SRG"
	case PrimariesP3:
		return "DCI"
	case PrimariesBT2100:
		return "202"
	default:
		return "unknown"
	}
}

// WhitePoint identifies the reference white.
type WhitePoint int

const (
	WhitePointD65 WhitePoint = iota
	WhitePointD50
	WhitePointE
)

func (w WhitePoint) String() string {
	switch w {
	case WhitePointD65:
		return "D65"
	case WhitePointD50:
		return "D50"
	case WhitePointE:
		return "EER"
	default:
		return "unknown"
	}
}

// TransferKind identifies the opto-electronic transfer function family.
type TransferKind int

const (
	TransferLinear TransferKind = iota
	TransferSRGB
	Transfer709
	TransferPQ
	TransferGamma
)

// Transfer is a transfer function: a kind plus, for TransferGamma, the
// exponent applied on encode.
type Transfer struct {
	Kind  TransferKind
	Gamma float64
}

func (t Transfer) String() string {
	switch t.Kind {
	case TransferLinear:
		return "Lin"
	case TransferSRGB:
		return "SRG"
	case Transfer709:
		return "709"
	case TransferPQ:
		return "PQ"
	case TransferGamma:
		return fmt.Sprintf("g%g", t.Gamma)
	default:
		return "unknown"
	}
}

// Encoding is the full color encoding identity carried alongside images.
type Encoding struct {
	Gray       bool
	Primaries  Primaries
	WhitePoint WhitePoint
	Transfer   Transfer
}

// SRGB returns the canonical gamma-encoded sRGB encoding (gray variant uses
// the same transfer and white point with a single channel).
func SRGB(gray bool) Encoding {
	return Encoding{
		Gray:       gray,
		Primaries:  PrimariesSRGB,
		WhitePoint: WhitePointD65,
		Transfer:   Transfer{Kind: TransferSRGB},
	}
}

// LinearSRGB returns the linear-light sRGB encoding.
func LinearSRGB(gray bool) Encoding {
	return Encoding{
		Gray:       gray,
		Primaries:  PrimariesSRGB,
		WhitePoint: WhitePointD65,
		Transfer:   Transfer{Kind: TransferLinear},
	}
}

// Equal reports structural equality of two encodings.
func (e Encoding) Equal(o Encoding) bool {
	return e == o
}

// IsLinear reports whether the transfer function is identity.
func (e Encoding) IsLinear() bool {
	return e.Transfer.Kind == TransferLinear
}

func (e Encoding) String() string {
	space := "RGB"
	if e.Gray {
		return strings.Join([]string{"Gra", e.WhitePoint.String(), "Rel", e.Transfer.String()}, "_")
	}
	return strings.Join([]string{space, e.WhitePoint.String(), e.Primaries.String(), "Rel", e.Transfer.String()}, "_")
}

// ParseDescription parses a compact description like "RGB_D65_SRG_Rel_SRG",
// "RGB_D65_SRG_Rel_Lin" or "Gra_D65_Rel_g2.2" into an Encoding. The rendering
// intent token is accepted and ignored; the metric pipeline is intent-free.
func ParseDescription(desc string) (Encoding, error) {
	parts := strings.Split(desc, "_")
	var enc Encoding

	if len(parts) == 0 || parts[0] == "" {
		return enc, fmt.Errorf("empty color description")
	}

	switch parts[0] {
	case "RGB":
		enc.Gray = false
		if len(parts) != 5 {
			return enc, fmt.Errorf("color description %q: want 5 RGB tokens, got %d", desc, len(parts))
		}
	case "Gra":
		enc.Gray = true
		if len(parts) != 4 {
			return enc, fmt.Errorf("color description %q: want 4 gray tokens, got %d", desc, len(parts))
		}
	default:
		return enc, fmt.Errorf("color description %q: unknown color space %q", desc, parts[0])
	}

	switch parts[1] {
	case "D65":
		enc.WhitePoint = WhitePointD65
	case "D50":
		enc.WhitePoint = WhitePointD50
	case "EER":
		enc.WhitePoint = WhitePointE
	default:
		return enc, fmt.Errorf("color description %q: unknown white point %q", desc, parts[1])
	}

	next := 2
	if !enc.Gray {
		switch parts[2] {
		case "SRG":
			enc.Primaries = PrimariesSRGB
		case "DCI":
			enc.Primaries = PrimariesP3
		case "202":
			enc.Primaries = PrimariesBT2100
		default:
			return enc, fmt.Errorf("color description %q: unknown primaries %q", desc, parts[2])
		}
		next = 3
	}

	// Rendering intent token, accepted but unused.
	switch parts[next] {
	case "Rel", "Per", "Abs", "Sat":
	default:
		return enc, fmt.Errorf("color description %q: unknown rendering intent %q", desc, parts[next])
	}

	tf := parts[next+1]
	switch {
	case tf == "Lin":
		enc.Transfer = Transfer{Kind: TransferLinear}
	case tf == "SRG":
		enc.Transfer = Transfer{Kind: TransferSRGB}
	case tf == "709":
		enc.Transfer = Transfer{Kind: Transfer709}
	case tf == "PQ":
		enc.Transfer = Transfer{Kind: TransferPQ}
	case strings.HasPrefix(tf, "g"):
		gamma, err := strconv.ParseFloat(tf[1:], 64)
		if err != nil || gamma <= 0 {
			return enc, fmt.Errorf("color description %q: bad gamma %q", desc, tf)
		}
		enc.Transfer = Transfer{Kind: TransferGamma, Gamma: gamma}
	default:
		return enc, fmt.Errorf("color description %q: unknown transfer function %q", desc, tf)
	}

	return enc, nil
}
