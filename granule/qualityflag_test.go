package granule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityFlagExtract(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		width    int
		packed   byte
		expected byte
	}{
		{"middle bits", 2, 3, 0b00010100, 5},
		{"low bit", 0, 1, 0b00000001, 1},
		{"high bits", 6, 2, 0b11000000, 3},
		{"whole byte", 0, 8, 0xAB, 0xAB},
		{"masked", 2, 1, 0b11111011, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qf := QualityFlag{Name: "flag", Packed: "QF1", Offset: tt.offset, Width: tt.width}
			require.NoError(t, qf.Validate())
			assert.Equal(t, tt.expected, qf.Extract(tt.packed))
		})
	}
}

func TestQualityFlagUnpack(t *testing.T) {
	qf := QualityFlag{Name: "QF1_CloudConfidence", Packed: "QF1_VIIRSCMIP", Offset: 2, Width: 3}
	out, err := qf.Unpack([]uint8{0b00010100, 0, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 0, 7}, out)

	out, err = qf.Unpack([]int8{-1})
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, out)

	_, err = qf.Unpack([]string{"x"})
	assert.Error(t, err)
}

func TestQualityFlagValidate(t *testing.T) {
	assert.Error(t, QualityFlag{Name: "a", Packed: "b", Offset: 6, Width: 3}.Validate())
	assert.Error(t, QualityFlag{Name: "a", Packed: "b", Offset: 0, Width: 0}.Validate())
	assert.Error(t, QualityFlag{Packed: "b", Width: 1}.Validate())
}

func TestDerivedName(t *testing.T) {
	assert.Equal(t, "All_Data/VIIRS-CM-IP_All/QF1_CloudMaskQuality",
		DerivedName("All_Data/VIIRS-CM-IP_All/QF1_VIIRSCMIP", "CloudMaskQuality"))
	assert.Equal(t, "QF2_Day", DerivedName("QF2_VIIRSCMIP", "Day"))
}

func TestQualityFlagDescribe(t *testing.T) {
	qf := QualityFlag{Meanings: map[int]string{0: "Confident Clear", 3: "Confident Cloudy"}}
	s, ok := qf.Describe(3)
	assert.True(t, ok)
	assert.Equal(t, "Confident Cloudy", s)
	_, ok = qf.Describe(1)
	assert.False(t, ok)
}
