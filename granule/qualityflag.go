package granule

import (
	"fmt"
	"strings"

	"github.com/robert-malhotra/go-granule/dtype"
)

// QualityFlag describes a category product unpacked from a bit field of a
// packed byte array.
type QualityFlag struct {
	// Name is the derived array name callers read.
	Name string
	// Packed is the name of the packed source array.
	Packed string
	Offset int
	Width  int
	// Meanings maps category codes to their descriptions.
	Meanings map[int]string
}

// DerivedName builds the name of a flag unpacked from a packed array such as
// "All_Data/VIIRS-CM-IP_All/QF1_VIIRSCMIP": the flag takes the directory of
// the packed array and the first three characters of its base name.
func DerivedName(packed, flag string) string {
	dir, base := "", packed
	if i := strings.LastIndexByte(packed, '/'); i >= 0 {
		dir, base = packed[:i+1], packed[i+1:]
	}
	if len(base) > 3 {
		base = base[:3]
	}
	return dir + base + "_" + flag
}

// Validate checks the bit field fits in a byte.
func (q QualityFlag) Validate() error {
	if q.Name == "" || q.Packed == "" {
		return fmt.Errorf("quality flag needs a name and a packed array")
	}
	if q.Offset < 0 || q.Width < 1 || q.Offset+q.Width > 8 {
		return fmt.Errorf("quality flag %q: bits [%d,%d) do not fit in a byte", q.Name, q.Offset, q.Offset+q.Width)
	}
	return nil
}

// Extract returns the flag's category code in a packed byte.
func (q QualityFlag) Extract(b byte) byte {
	return (b >> uint(q.Offset)) & byte(1<<uint(q.Width)-1)
}

// Unpack extracts the category code of every element of a packed array.
func (q QualityFlag) Unpack(packed interface{}) ([]byte, error) {
	raw, err := dtype.ToBytes(packed)
	if err != nil {
		return nil, fmt.Errorf("quality flag %q: %w", q.Name, err)
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = q.Extract(b)
	}
	return out, nil
}

// Describe returns the meaning of a category code, if known.
func (q QualityFlag) Describe(code int) (string, bool) {
	s, ok := q.Meanings[code]
	return s, ok
}
