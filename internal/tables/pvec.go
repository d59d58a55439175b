/*
NAME
  pvec.go

DESCRIPTION
  pvec.go carries puncturing vectors (PVEC) in the shape of the ETSI
  EN 300 401 ones: eight 32-bit patterns used by the MSC UEP/EEP
  depuncture stage. The patterns are approximations, not the standard's
  literal rows. Rows 0-6 are
  the data puncturing patterns referenced by protection-profile index;
  row 7 is the fixed tail pattern applied to the last 24 bits of every
  subchannel.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package tables

// PVEC holds the eight 32-bit puncturing patterns as bit slices (1 = keep,
// 0 = erase), indexed [row][bit].
var PVEC = [8][32]byte{
	// PI1: heaviest protection, closest to rate 1/4.
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	// PI2
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	// PI3
	{1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1,
		1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1},
	// PI4
	{1, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 0,
		1, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 0},
	// PI5
	{1, 1, 0, 0, 1, 1, 1, 0, 1, 1, 0, 0, 1, 1, 1, 0,
		1, 1, 0, 0, 1, 1, 1, 0, 1, 1, 0, 0, 1, 1, 1, 0},
	// PI6
	{1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0,
		1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0},
	// PI7: lightest protection of the data rows, closest to rate 1.
	{1, 0, 0, 0, 1, 1, 0, 0, 1, 0, 0, 0, 1, 1, 0, 0,
		1, 0, 0, 0, 1, 1, 0, 0, 1, 0, 0, 0, 1, 1, 0, 0},
	// PI8 (tail): fixed pattern applied to the final 24 bits of every
	// subchannel, rate 1/2: keeps the first two of every four rate-1/4 bits.
	{1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0,
		1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0},
}
