package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dedup/pkg/dedup/digest"
	"github.com/jamesainslie/dedup/pkg/dedup/dupes"
	"github.com/jamesainslie/dedup/pkg/dedup/manifest"
	"github.com/jamesainslie/dedup/pkg/dedup/resolve"
)

func TestJSONFormatter_Format_HashReport(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	report := &Report{
		Command: "hash",
		Sources: []string{"/data"},
		Hashes: []digest.Result{
			{
				Path:    "/data/a.txt",
				Size:    5,
				ModTime: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				Digests: digest.DigestSet{
					digest.SHA256: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
					digest.MD5:    "5d41402abc4b2a76b9719d911017c592",
				},
			},
		},
	}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.Contains(t, parsed, "meta")
	assert.Contains(t, parsed, "hashes")
	assert.NotContains(t, parsed, "duplicates")

	meta := parsed["meta"].(map[string]interface{})
	assert.Equal(t, "hash", meta["command"])

	hashes := parsed["hashes"].([]interface{})
	require.Len(t, hashes, 1)
	first := hashes[0].(map[string]interface{})
	assert.Equal(t, "/data/a.txt", first["path"])
	values := first["hashes"].(map[string]interface{})
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", values["md5"])
}

func TestJSONFormatter_Format_DuplicateReport(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	groups := []dupes.Group{
		{
			Algorithm: digest.SHA256,
			Digest:    "feedfacefeedface",
			Size:      100,
			Members: []dupes.Member{
				{Path: "/data/a", Size: 100},
				{Path: "/data/b", Size: 100},
				{Path: "/data/c", Size: 100},
			},
		},
	}
	report := &Report{
		Command: "scan",
		Duplicates: &DuplicateReport{
			Algorithm: digest.SHA256,
			Groups:    groups,
			Summary:   dupes.Summarize(groups),
		},
	}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	dup := parsed["duplicates"].(map[string]interface{})
	assert.Equal(t, "sha256", dup["algorithm"])
	assert.Equal(t, float64(2), dup["duplicate_files"])
	assert.Equal(t, float64(200), dup["wasted_bytes"])

	group := dup["groups"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "/data/a", group["original"])
	assert.Len(t, group["duplicates"].([]interface{}), 2)
}

func TestJSONFormatter_Format_VerificationReport(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	report := &Report{
		Command: "verify",
		Verification: &manifest.Report{
			RunID:    "run-1",
			Verified: 1,
			Failed:   1,
			Results: []manifest.Result{
				{Path: "/data/ok", Status: manifest.StatusVerified},
				{
					Path:   "/data/bad",
					Status: manifest.StatusFailed,
					Mismatches: []manifest.Mismatch{
						{Algorithm: digest.SHA256, Expected: "aa", Actual: "bb"},
					},
				},
			},
		},
	}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	verification := parsed["verification"].(map[string]interface{})
	assert.Equal(t, float64(1), verification["verified"])
	assert.Equal(t, float64(1), verification["failed"])

	results := verification["results"].([]interface{})
	require.Len(t, results, 2)
	bad := results[1].(map[string]interface{})
	assert.Equal(t, "failed", bad["status"])
	mismatch := bad["mismatches"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "aa", mismatch["expected"])
	assert.Equal(t, "bb", mismatch["actual"])
}

func TestJSONFormatter_Format_ResolutionOutcome(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	report := &Report{
		Command: "scan",
		Resolution: &resolve.Outcome{
			RunID:     "run-2",
			Policy:    "remove",
			Processed: 2,
			Bytes:     1024,
			Actions: []resolve.Action{
				{Path: "/data/b", Size: 512},
				{Path: "/data/c", Size: 512},
			},
		},
	}

	err := formatter.Format(&buf, report)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	resolution := parsed["resolution"].(map[string]interface{})
	assert.Equal(t, "remove", resolution["policy"])
	assert.Equal(t, float64(1024), resolution["bytes"])
	assert.Len(t, resolution["actions"].([]interface{}), 2)
}

func TestJSONFormatter_Format_EmptyReport(t *testing.T) {
	formatter := &JSONFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Report{Command: "scan"})
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.NotContains(t, parsed, "hashes")
	assert.NotContains(t, parsed, "verification")
}
