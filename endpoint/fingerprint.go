package endpoint

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"net/http"
	"slices"
)

// Fingerprint is the structural identity of a Descriptor, used to
// suppress duplicate in-flight requests.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// Identify derives the Fingerprint of d from its path, method, the set of
// header keys and the set of query parameter names.
//
// Header and query values, the auth requirement and the body are not part
// of the identity: GET /items?id=1 and GET /items?id=2 share a fingerprint
// and are treated as the same request while either is in flight.
// Header keys compare case-insensitively, query names case-sensitively,
// and declaration order and repetition are ignored.
func Identify(d Descriptor) Fingerprint {
	h := fnv.New64a()

	writeField(h, d.path)
	writeField(h, string(d.method))

	headerKeys := make([]string, 0, len(d.headers))
	for _, p := range d.headers {
		headerKeys = append(headerKeys, http.CanonicalHeaderKey(p.Key))
	}
	writeSet(h, headerKeys)

	queryKeys := make([]string, 0, len(d.query))
	for _, p := range d.query {
		queryKeys = append(queryKeys, p.Key)
	}
	writeSet(h, queryKeys)

	return Fingerprint(h.Sum64())
}

// Fingerprint is shorthand for [Identify].
func (d Descriptor) Fingerprint() Fingerprint {
	return Identify(d)
}

// writeSet sorts and de-duplicates keys, then writes the count followed by each key.
func writeSet(h hash.Hash64, keys []string) {
	slices.Sort(keys)
	keys = slices.Compact(keys)

	writeLen(h, len(keys))
	for _, k := range keys {
		writeField(h, k)
	}
}

// writeField length-prefixes s so adjacent fields cannot run together.
func writeField(h hash.Hash64, s string) {
	writeLen(h, len(s))
	h.Write([]byte(s))
}

func writeLen(h hash.Hash64, n int) {
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}
