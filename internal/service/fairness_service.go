package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// drawsPerBlock is how many independent 4-byte chunks one 256-bit MAC yields.
const drawsPerBlock = 8

// CommitRevealFairness implements ports.FairnessService.
//
// A round commits to SHA-256(serverSeed) before any outcome exists; the
// draws are HMAC-SHA256(serverSeed, "<clientSeed>:<nonce>") read as 4-byte
// big-endian chunks normalized to [0,1). Anyone holding the revealed seed
// can recompute both the hash and every draw.
type CommitRevealFairness struct{}

// NewCommitRevealFairness creates the commit-reveal RNG.
func NewCommitRevealFairness() *CommitRevealFairness {
	return &CommitRevealFairness{}
}

// Commit generates a 32-byte random seed and returns it hex-encoded along
// with the hex SHA-256 commitment over the encoded form.
func (f *CommitRevealFairness) Commit() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generating server seed: %w", err)
	}
	seed := hex.EncodeToString(raw)
	sum := sha256.Sum256([]byte(seed))
	return seed, hex.EncodeToString(sum[:]), nil
}

// Draw derives count floats in [0,1) from (serverSeed, clientSeed, nonce).
// Deterministic: the same inputs always yield the same sequence.
func (f *CommitRevealFairness) Draw(serverSeed, clientSeed string, nonce, count int) []float64 {
	draws := make([]float64, 0, count)
	var block []byte
	for i := 0; i < count; i++ {
		if i%drawsPerBlock == 0 {
			block = drawBlock(serverSeed, clientSeed, nonce, i/drawsPerBlock)
		}
		off := (i % drawsPerBlock) * 4
		v := binary.BigEndian.Uint32(block[off : off+4])
		draws = append(draws, float64(v)/(1<<32))
	}
	return draws
}

// drawBlock derives the j-th 32-byte entropy block. Block 0 is the plain
// commit-reveal MAC; later blocks append the block index to the message so
// chunk positions are never reused for counts above 8.
func drawBlock(serverSeed, clientSeed string, nonce, block int) []byte {
	msg := fmt.Sprintf("%s:%d", clientSeed, nonce)
	if block > 0 {
		msg = fmt.Sprintf("%s:%d", msg, block)
	}
	mac := hmac.New(sha256.New, []byte(serverSeed))
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}

// Verify checks a revealed seed against its published commitment.
func (f *CommitRevealFairness) Verify(serverSeed, serverSeedHash string) bool {
	sum := sha256.Sum256([]byte(serverSeed))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(serverSeedHash)) == 1
}
