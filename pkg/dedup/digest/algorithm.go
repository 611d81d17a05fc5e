// Package digest computes content digests of files. It streams each file once,
// updating every requested algorithm from the same chunk sequence, and provides
// a bounded worker pool for hashing many files concurrently.
package digest

import (
	"crypto/md5"  //nolint:gosec // offered for compatibility, not security
	"crypto/sha1" //nolint:gosec // offered for compatibility, not security
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Algorithm identifies a supported digest algorithm. The set is closed:
// every case is handled exhaustively at the call sites, so an unsupported
// identifier can only enter the system through Parse.
type Algorithm int

// Supported algorithms.
const (
	// MD5 is a legacy 128-bit digest, offered for compatibility with existing
	// manifests, not for security.
	MD5 Algorithm = iota
	// SHA1 is a legacy 160-bit digest, offered for compatibility.
	SHA1
	// SHA256 is the default collision-resistant digest.
	SHA256
	// SHA512 is a 512-bit member of the SHA-2 family.
	SHA512
	// BLAKE2b is the 256-bit BLAKE2b digest.
	BLAKE2b
	// CRC32 is the IEEE 32-bit cyclic redundancy checksum.
	CRC32
	// XXH64 is the non-cryptographic 64-bit xxHash digest.
	XXH64
)

// Default is the algorithm used when none is specified.
const Default = SHA256

// ErrUnsupportedAlgorithm indicates an unrecognized algorithm identifier.
var ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

// algorithmNames maps each algorithm to its canonical identifier.
var algorithmNames = map[Algorithm]string{
	MD5:     "md5",
	SHA1:    "sha1",
	SHA256:  "sha256",
	SHA512:  "sha512",
	BLAKE2b: "blake2b",
	CRC32:   "crc32",
	XXH64:   "xxh64",
}

// String returns the canonical lowercase identifier for the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Label returns the upper-cased identifier used in human-readable reports.
func (a Algorithm) Label() string {
	return strings.ToUpper(a.String())
}

// Parse resolves an algorithm identifier string.
// It returns ErrUnsupportedAlgorithm for unknown identifiers.
func Parse(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md5":
		return MD5, nil
	case "sha1":
		return SHA1, nil
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	case "blake2b":
		return BLAKE2b, nil
	case "crc32":
		return CRC32, nil
	case "xxh64":
		return XXH64, nil
	default:
		return Default, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}

// ParseAll resolves a list of algorithm identifiers. Duplicates are removed
// while preserving first-occurrence order. The identifier check happens before
// any file bytes are read.
func ParseAll(names []string) ([]Algorithm, error) {
	seen := make(map[Algorithm]bool, len(names))
	algos := make([]Algorithm, 0, len(names))
	for _, name := range names {
		algo, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if seen[algo] {
			continue
		}
		seen[algo] = true
		algos = append(algos, algo)
	}
	return algos, nil
}

// Supported returns the canonical identifiers of all supported algorithms,
// sorted alphabetically.
func Supported() []string {
	names := make([]string, 0, len(algorithmNames))
	for _, name := range algorithmNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newHash constructs the incremental hash state for the algorithm.
// The switch is exhaustive over the closed Algorithm set.
func newHash(a Algorithm) (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil //nolint:gosec
	case SHA1:
		return sha1.New(), nil //nolint:gosec
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case BLAKE2b:
		return blake2b.New256(nil)
	case CRC32:
		return crc32.New(crc32.IEEETable), nil
	case XXH64:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, a)
	}
}

// DigestSet maps each computed algorithm to its lowercase hex digest value
// for one file. It is created by a single read pass and immutable afterwards.
type DigestSet map[Algorithm]string

// Value returns the digest for the given algorithm and whether it is present.
func (ds DigestSet) Value(a Algorithm) (string, bool) {
	v, ok := ds[a]
	return v, ok
}

// Algorithms returns the algorithms present in the set, sorted by identifier.
func (ds DigestSet) Algorithms() []Algorithm {
	algos := make([]Algorithm, 0, len(ds))
	for a := range ds {
		algos = append(algos, a)
	}
	sort.Slice(algos, func(i, j int) bool {
		return algos[i].String() < algos[j].String()
	})
	return algos
}
