// Package dupes groups hashed files by content identity. Two files with an
// equal digest under the grouping algorithm are treated as byte-identical;
// no byte-for-byte re-compare is performed.
package dupes

import (
	"sort"
	"time"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
)

// Member is one file inside a duplicate group.
type Member struct {
	// Path is the absolute path to the file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time"`

	// Digests are the digests computed for the file.
	Digests digest.DigestSet `json:"hashes"`
}

// Group is a set of two or more files sharing one digest value.
// Members are ordered by ascending modification time; Members[0] is the
// designated original, everything after it a duplicate.
type Group struct {
	// Algorithm is the grouping algorithm.
	Algorithm digest.Algorithm `json:"algorithm"`

	// Digest is the digest value every member shares.
	Digest string `json:"digest"`

	// Size is the per-member file size in bytes.
	Size int64 `json:"size"`

	// Members holds the files, oldest first.
	Members []Member `json:"members"`
}

// Original returns the member retained by resolution policy.
func (g *Group) Original() Member {
	return g.Members[0]
}

// Duplicates returns every member except the original.
func (g *Group) Duplicates() []Member {
	return g.Members[1:]
}

// WastedBytes returns the total size of the non-original members.
func (g *Group) WastedBytes() int64 {
	var total int64
	for _, m := range g.Duplicates() {
		total += m.Size
	}
	return total
}

// Summary aggregates duplicate statistics across all groups.
type Summary struct {
	// Sets is the number of duplicate groups.
	Sets int `json:"sets"`

	// Duplicates is the number of non-original files across all groups.
	Duplicates int `json:"duplicates"`

	// WastedBytes is the total size of all non-original files.
	WastedBytes int64 `json:"wasted_bytes"`
}

// Summarize computes aggregate statistics for a set of groups.
func Summarize(groups []Group) Summary {
	s := Summary{Sets: len(groups)}
	for i := range groups {
		s.Duplicates += len(groups[i].Members) - 1
		s.WastedBytes += groups[i].WastedBytes()
	}
	return s
}

// Find partitions hashed files into duplicate groups keyed by the digest
// value of algo. Files lacking a digest for algo are skipped. Singleton
// groups are dropped: a file with unique content is not a duplicate.
//
// Within each group, members are sorted by ascending modification time with
// ties broken by input order (stable sort), so repeated runs on unchanged
// input produce identical output. Group order follows the first appearance
// of each digest in the input.
func Find(results []*digest.Result, algo digest.Algorithm) []Group {
	byDigest := make(map[string][]Member)
	var order []string

	for _, res := range results {
		value, ok := res.Digests.Value(algo)
		if !ok {
			continue
		}
		if _, seen := byDigest[value]; !seen {
			order = append(order, value)
		}
		byDigest[value] = append(byDigest[value], Member{
			Path:    res.Path,
			Size:    res.Size,
			ModTime: res.ModTime,
			Digests: res.Digests,
		})
	}

	groups := make([]Group, 0)
	for _, value := range order {
		members := byDigest[value]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].ModTime.Before(members[j].ModTime)
		})
		groups = append(groups, Group{
			Algorithm: algo,
			Digest:    value,
			Size:      members[0].Size,
			Members:   members,
		})
	}
	return groups
}
