package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Entry records one executed command and its outcome. Entries are
// hash-chained: each hash covers the previous hash, so altering or
// dropping an entry breaks verification of everything after it.
type Entry struct {
	Seq          int    `json:"seq"`
	Timestamp    string `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	Command      string `json:"command"`
	Outcome      string `json:"outcome"`
	Hash         string `json:"hash"`
}

// Journal is a tamper-evident in-memory record of every command a run
// executed.
type Journal struct {
	mu       sync.Mutex
	lastHash string
	entries  []*Entry
}

// NewJournal starts an empty chain anchored on a zero hash.
func NewJournal() *Journal {
	return &Journal{lastHash: strings.Repeat("0", 64)}
}

// Append adds one command/outcome pair to the chain.
func (j *Journal) Append(command, outcome string) *Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := &Entry{
		Seq:          len(j.entries),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		PreviousHash: j.lastHash,
		Command:      command,
		Outcome:      outcome,
	}
	entry.Hash = hashEntry(entry)

	j.lastHash = entry.Hash
	j.entries = append(j.entries, entry)
	return entry
}

// Entries returns the recorded chain in append order.
func (j *Journal) Entries() []*Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len reports the number of recorded entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

func hashEntry(e *Entry) string {
	input := fmt.Sprintf("%s|%s|%d|%s|%s", e.PreviousHash, e.Timestamp, e.Seq, e.Command, e.Outcome)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Verify checks that entries form an unbroken, untampered chain.
func Verify(entries []*Entry) bool {
	for i, entry := range entries {
		if i > 0 && entry.PreviousHash != entries[i-1].Hash {
			return false
		}
		if hashEntry(entry) != entry.Hash {
			return false
		}
	}
	return true
}
