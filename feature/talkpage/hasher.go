package talkpage

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Content hashes are the merge keys for topics and replies. The same input
// must produce the same hash on every device, so fields are joined with an
// unambiguous separator before digesting.

const hashSep = "\x1f"

// ReplySha digests a reply's content and nesting depth.
func ReplySha(text string, depth int16) string {
	return digest(text + hashSep + strconv.Itoa(int(depth)))
}

// TopicSha digests a topic's title and section index.
func TopicSha(title string, sectionIndex int) string {
	return digest(title + hashSep + strconv.Itoa(sectionIndex))
}

// RepliesSha digests an entire reply subtree from the individual reply
// hashes, in reply order. Equal subtree hashes let the merge skip reply-level
// diffing for untouched threads.
func RepliesSha(replyShas []string) string {
	return digest(strings.Join(replyShas, hashSep))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
