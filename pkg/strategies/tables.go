/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tables.go
Description: Boundary-value tables for the Kyra Fuzzer mutation engine.
Small integers, sign boundaries, and width maxima that historically shake
out off-by-one and overflow bugs in parsers.
*/

package strategies

var interesting8 = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F,
	0x10, 0x20, 0x40, 0x7F, 0x80, 0x81, 0xFF,
}

var interesting16 = []uint16{
	0x0000, 0x0001, 0x0002, 0x0003, 0x0004, 0x0005, 0x0006, 0x0007, 0x0008, 0x0009, 0x000A, 0x000B, 0x000C, 0x000D, 0x000E, 0x000F,
	0x0010, 0x0020, 0x0040, 0x007F, 0x0080, 0x0081, 0x00FF, 0x0100, 0x0200, 0x0400, 0x0800, 0x1000, 0x2000, 0x4000, 0x7FFF, 0x8000, 0x8001, 0xFFFF,
}

var interesting32 = []uint32{
	0x00000000, 0x00000001, 0x00000002, 0x00000003, 0x00000004, 0x00000005, 0x00000006, 0x00000007,
	0x00000008, 0x00000009, 0x0000000A, 0x0000000B, 0x0000000C, 0x0000000D, 0x0000000E, 0x0000000F,
	0x00000010, 0x00000020, 0x00000040, 0x0000007F, 0x00000080, 0x00000081, 0x000000FF, 0x00000100,
	0x00000200, 0x00000400, 0x00000800, 0x00001000, 0x00002000, 0x00004000, 0x00007FFF, 0x00008000,
	0x00008001, 0x0000FFFF, 0x00010000, 0x00020000, 0x00040000, 0x00080000, 0x00100000, 0x00200000,
	0x00400000, 0x00800000, 0x01000000, 0x02000000, 0x04000000, 0x08000000, 0x10000000, 0x20000000,
	0x40000000, 0x7FFFFFFF, 0x80000000, 0x80000001, 0xFFFFFFFF,
}
