package badger

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/poiesic/larder/core"
)

// Key prefixes. Each ends in ':' so no prefix is a prefix of another.
const (
	recipePrefix           = "recrec:"
	recipeNameSourcePrefix = "recns:"
	recipeURLPrefix        = "recurl:"
	recipeUUIDPrefix       = "recuuid:"
	recipeIDSeq            = "recseq"
	runPrefix              = "runlog:"
)

// idKeyLen is the width of an ID inside a key.
const idKeyLen = 8

// appendIDKey appends id as 8 big-endian bytes. Value encodings are varint
// and do not sort, so keys carry IDs in this fixed form.
func appendIDKey(key []byte, id core.ID) []byte {
	return binary.BigEndian.AppendUint64(key, uint64(id))
}

// idFromKey reads an ID written by appendIDKey.
func idFromKey(b []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(b))
}

// makeRecipeKey generates the primary key for a recipe.
// Format: prefix + 8-byte big-endian ID, so keys iterate in ID order.
func makeRecipeKey(id core.ID) []byte {
	return appendIDKey([]byte(recipePrefix), id)
}

// nameSourceFingerprint hashes the dedupe tuple. Names are compared exactly.
func nameSourceFingerprint(name, source string) core.ID {
	return core.IDFromContent(name + "\x00" + source)
}

// urlFingerprint hashes a source URL after trimming whitespace.
func urlFingerprint(sourceURL string) core.ID {
	return core.IDFromContent(strings.TrimSpace(sourceURL))
}

// makeFingerprintPrefix is prefix + fingerprint; every index entry sharing
// a fingerprint lives under it.
func makeFingerprintPrefix(prefix string, fp core.ID) []byte {
	return appendIDKey([]byte(prefix), fp)
}

// makeFingerprintKey generates an index key.
// Format: prefix + fingerprint + recordID. Hash collisions get distinct keys.
func makeFingerprintKey(prefix string, fp, id core.ID) []byte {
	key := makeFingerprintPrefix(prefix, fp)
	return appendIDKey(key, id)
}

// makeUUIDKey generates the public identifier index key.
func makeUUIDKey(uuid string) []byte {
	return []byte(recipeUUIDPrefix + uuid)
}

// makeRunKey generates a run history key.
// Format: prefix + 8-byte start time (UnixMicro) + label, so runs sort by start.
func makeRunKey(start time.Time, label string) []byte {
	buf := make([]byte, len(runPrefix)+8, len(runPrefix)+8+len(label))
	copy(buf, runPrefix)
	binary.BigEndian.PutUint64(buf[len(runPrefix):], uint64(start.UnixMicro()))
	return append(buf, label...)
}
