package entry

// Header field offsets, in bytes from the start of an entry block.
// Every field is a native-order 64-bit word.
const (
	OffHash        = 0  // cached hash of the key
	OffNext        = 8  // hash-chain successor, Nil at end of chain
	OffKeyLength   = 16 // serialized key length in bytes
	OffValueLength = 24 // serialized value length in bytes
	OffRefCount    = 32 // atomic live-reference counter
	OffLRUNext     = 40 // cache-wide LRU successor
	OffLRUPrev     = 48 // cache-wide LRU predecessor
	OffData        = 56 // key bytes, then value bytes

	// HeaderSize is the size of the fixed header that precedes DATA.
	HeaderSize = OffData
)

// Sizer computes the total block size for an entry with the given key and
// value lengths. Blocks handed to Init must be exactly this large.
type Sizer func(keyLen, valueLen uint64) uint64

// AllocLen is the default Sizer: header plus key plus value, unpadded.
func AllocLen(keyLen, valueLen uint64) uint64 {
	return HeaderSize + keyLen + valueLen
}
