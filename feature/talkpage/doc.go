// Package talkpage mirrors article discussion pages locally.
//
// A fetch is gated on the page revision id: if the stored revision matches
// the requested one the local graph is returned without touching the
// network. A newer snapshot is folded in with a set-difference merge keyed
// by content hash at the topic level and again at the reply level, so
// unchanged threads keep their local row identity and untouched reply
// subtrees are skipped via a single digest comparison.
package talkpage
