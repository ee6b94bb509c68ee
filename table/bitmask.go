package table

// Bitmask is a contiguous, word-aligned bit array over token ids, as
// required by the representation contract for allowed_mask: one bit per
// vocabulary token, packed into 64-bit words.
type Bitmask struct {
	words []uint64
	size  int // number of addressable bits
}

// NewBitmask allocates a Bitmask wide enough to address size bits.
func NewBitmask(size int) *Bitmask {
	return &Bitmask{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Set sets bit i.
func (m *Bitmask) Set(i int) {
	m.words[i/64] |= 1 << uint(i%64)
}

// Test reports whether bit i is set.
func (m *Bitmask) Test(i int) bool {
	if i < 0 || i >= m.size {
		return false
	}
	return m.words[i/64]&(1<<uint(i%64)) != 0
}

// Clear zeroes every bit without reallocating.
func (m *Bitmask) Clear() {
	for i := range m.words {
		m.words[i] = 0
	}
}

// Size returns the number of addressable bits.
func (m *Bitmask) Size() int {
	return m.size
}

// CopyFrom overwrites m's contents with src's, resizing m if necessary.
func (m *Bitmask) CopyFrom(src *Bitmask) {
	if len(m.words) != len(src.words) {
		m.words = make([]uint64, len(src.words))
	}
	copy(m.words, src.words)
	m.size = src.size
}

// SetTokens returns the indices of every set bit, in ascending order.
func (m *Bitmask) SetTokens() []int {
	var out []int
	for w, word := range m.words {
		if word == 0 {
			continue
		}
		for b := 0; b < 64; b++ {
			if word&(1<<uint(b)) != 0 {
				idx := w*64 + b
				if idx < m.size {
					out = append(out, idx)
				}
			}
		}
	}
	return out
}

// Bytes returns the mask's little-endian byte representation, sized
// ceil(size/8): the layout Guide.Tokens copies into a caller's buffer.
func (m *Bitmask) Bytes() []byte {
	n := (m.size + 7) / 8
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		word := m.words[i/8]
		shift := uint(i%8) * 8
		out[i] = byte(word >> shift)
	}
	return out
}
