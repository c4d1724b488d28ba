package encoder

import "testing"

// TestPlacementCoversEveryCell places an identity codeword stream into every
// symbol size and verifies the diagonal walk assigns each mapping-matrix
// cell exactly once. The only cells allowed to stay unassigned are the two
// light members of the fixed bottom-right 2x2 block, which exists only when
// the mapping area leaves a four-bit remainder.
func TestPlacementCoversEveryCell(t *testing.T) {
	for idx := range symbols {
		si := &symbols[idx]
		numRows := si.MappingMatrixRows()
		numCols := si.MappingMatrixColumns()
		totalWords := si.DataCapacity + si.ErrorCodewords

		area := numRows * numCols
		leftover := area - 8*totalWords
		if leftover != 0 && leftover != 4 {
			t.Fatalf("size %d (%dx%d): mapping area %d leaves %d bits over %d codewords",
				idx, si.MatrixWidth, si.MatrixHeight, area, leftover, totalWords)
		}

		codewords := make([]byte, totalWords)
		for i := range codewords {
			codewords[i] = byte(i)
		}

		p := NewDefaultPlacement(codewords, numCols, numRows)
		p.Place()

		unassigned := 0
		for row := 0; row < numRows; row++ {
			for col := 0; col < numCols; col++ {
				if !p.hasBit(col, row) {
					unassigned++
				}
			}
		}

		wantUnassigned := 0
		if leftover == 4 {
			// The corner fix darkens two of the four leftover cells and
			// leaves the other two light.
			wantUnassigned = 2
			if !p.GetBit(numCols-1, numRows-1) || !p.GetBit(numCols-2, numRows-2) {
				t.Errorf("size %d: fixed bottom-right pair not darkened", idx)
			}
		}
		if unassigned != wantUnassigned {
			t.Errorf("size %d (%dx%d mapping): %d unassigned cells, want %d",
				idx, numRows, numCols, unassigned, wantUnassigned)
		}
	}
}

// TestMappingDimensions pins the mapping-matrix dimensions of all 30 sizes,
// and with them which corner pattern each size's walk will trigger: columns
// not divisible by 4 use corner 2, remainder 4 mod 8 uses corner 3, and
// multiples of 8 use corner 4.
func TestMappingDimensions(t *testing.T) {
	tests := []struct {
		rows, cols                 int
		mappingRows, mappingCols   int
	}{
		{10, 10, 8, 8},
		{12, 12, 10, 10},
		{14, 14, 12, 12},
		{16, 16, 14, 14},
		{18, 18, 16, 16},
		{20, 20, 18, 18},
		{22, 22, 20, 20},
		{24, 24, 22, 22},
		{26, 26, 24, 24},
		{32, 32, 28, 28},
		{36, 36, 32, 32},
		{40, 40, 36, 36},
		{44, 44, 40, 40},
		{48, 48, 44, 44},
		{52, 52, 48, 48},
		{64, 64, 56, 56},
		{72, 72, 64, 64},
		{80, 80, 72, 72},
		{88, 88, 80, 80},
		{96, 96, 88, 88},
		{104, 104, 96, 96},
		{120, 120, 108, 108},
		{132, 132, 120, 120},
		{144, 144, 132, 132},
		{8, 18, 6, 16},
		{8, 32, 6, 28},
		{12, 26, 10, 24},
		{12, 36, 10, 32},
		{16, 36, 14, 32},
		{16, 48, 14, 44},
	}

	if len(tests) != len(symbols) {
		t.Fatalf("expected %d sizes, table has %d", len(symbols), len(tests))
	}

	for idx, tc := range tests {
		si := &symbols[idx]
		if si.MatrixHeight != tc.rows || si.MatrixWidth != tc.cols {
			t.Errorf("size %d: symbol %dx%d, want %dx%d",
				idx, si.MatrixHeight, si.MatrixWidth, tc.rows, tc.cols)
			continue
		}
		if got := si.MappingMatrixRows(); got != tc.mappingRows {
			t.Errorf("size %d: mapping rows %d, want %d", idx, got, tc.mappingRows)
		}
		if got := si.MappingMatrixColumns(); got != tc.mappingCols {
			t.Errorf("size %d: mapping cols %d, want %d", idx, got, tc.mappingCols)
		}

		// Exactly one corner-pattern class applies per size.
		corner2 := tc.mappingCols%4 != 0
		corner3 := tc.mappingCols%8 == 4
		corner4 := tc.mappingCols%8 == 0
		count := 0
		for _, c := range []bool{corner2, corner3, corner4} {
			if c {
				count++
			}
		}
		if count != 1 {
			t.Errorf("size %d: corner classes c2=%v c3=%v c4=%v, want exactly one",
				idx, corner2, corner3, corner4)
		}
	}
}
