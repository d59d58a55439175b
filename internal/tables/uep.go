/*
NAME
  uep.go

DESCRIPTION
  uep.go carries an unequal error protection (UEP) profile table in the
  layout of the ETSI EN 300 401 one: for each of the 64 protection-profile
  indices signalled in a FIG type 0/1 subchannel record, it gives the
  audio bit-rate, Capacity Unit size and protection level that a "short
  form" FIG selects. The values are approximations, not the standard's
  literal table.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package tables

// UEPProfile describes one row of the ETSI UEP protection profile table.
type UEPProfile struct {
	BitrateKbps int
	SizeCU      int
	ProtLevel   int // 1 (most protected) .. 5 (least protected)
}

// UEPTable is the 64-entry UEP profile table addressed by a FIG 0/1
// subchannel record's table index (0..63). Entries are grouped by bit
// rate with up to five protection levels per rate, mirroring the table
// carried in the DAB reference implementation's ensemble model.
var UEPTable = [64]UEPProfile{
	{32, 16, 5}, {32, 21, 4}, {32, 24, 3}, {32, 29, 2}, {32, 35, 1},
	{48, 24, 5}, {48, 29, 4}, {48, 36, 3}, {48, 43, 2}, {48, 53, 1},
	{56, 29, 5}, {56, 35, 4}, {56, 42, 3}, {56, 52, 2}, {56, 63, 1},
	{64, 32, 5}, {64, 40, 4}, {64, 48, 3}, {64, 58, 2}, {64, 70, 1},
	{80, 40, 5}, {80, 48, 4}, {80, 60, 3}, {80, 72, 2}, {80, 84, 1},
	{96, 48, 5}, {96, 58, 4}, {96, 72, 3}, {96, 84, 2}, {96, 105, 1},
	{112, 56, 5}, {112, 70, 4}, {112, 84, 3}, {112, 104, 2}, {112, 126, 1},
	{128, 64, 5}, {128, 80, 4}, {128, 96, 3}, {128, 116, 2}, {128, 140, 1},
	{160, 80, 5}, {160, 96, 4}, {160, 120, 3}, {160, 144, 2}, {160, 176, 1},
	{192, 96, 5}, {192, 116, 4}, {192, 144, 3}, {192, 174, 2}, {192, 210, 1},
	{224, 112, 5}, {224, 140, 4}, {224, 168, 3}, {224, 200, 2}, {224, 245, 1},
	{256, 128, 5}, {256, 160, 4}, {256, 192, 3}, {256, 230, 2}, {256, 280, 1},
	{320, 160, 5}, {320, 224, 3}, {384, 192, 5}, {384, 280, 3},
}

// Lookup returns the UEP profile at index idx, and false if idx is out of
// range: FIG parsing must reject table indices >= 64.
func Lookup(idx int) (UEPProfile, bool) {
	if idx < 0 || idx >= len(UEPTable) {
		return UEPProfile{}, false
	}
	return UEPTable[idx], true
}
