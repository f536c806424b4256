package sfio

// Cursor interprets a byte slice as a stream of big-endian integer values,
// generalizing freetype/truetype/truetype.go's data type (u32/u16/u8/skip)
// from a TrueType-only helper into a primitive every driver in package
// driver can share when walking a table it has already EnterFrame'd.
type Cursor []byte

// U32 returns the next big-endian uint32 and advances the cursor.
func (c *Cursor) U32() uint32 {
	d := *c
	x := uint32(d[0])<<24 | uint32(d[1])<<16 | uint32(d[2])<<8 | uint32(d[3])
	*c = d[4:]
	return x
}

// U16 returns the next big-endian uint16 and advances the cursor.
func (c *Cursor) U16() uint16 {
	d := *c
	x := uint16(d[0])<<8 | uint16(d[1])
	*c = d[2:]
	return x
}

// U8 returns the next byte and advances the cursor.
func (c *Cursor) U8() uint8 {
	d := *c
	x := d[0]
	*c = d[1:]
	return x
}

// I16 returns the next big-endian int16 and advances the cursor.
func (c *Cursor) I16() int16 { return int16(c.U16()) }

// Skip advances the cursor by n bytes without reading them.
func (c *Cursor) Skip(n int) { *c = (*c)[n:] }

// Len returns the number of unread bytes remaining.
func (c Cursor) Len() int { return len(c) }

// Bytes returns the next n bytes without advancing the cursor.
func (c Cursor) Bytes(n int) []byte { return c[:n] }
