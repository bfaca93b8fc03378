// Package tonproof verifies ton-proof signatures produced by wallets
// during the connect flow. A valid proof is what lets the campaign job
// trust that a wallet address really belongs to the user before
// crediting spins to it.
package tonproof

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"

	"github.com/onton-events/settler/src/utils/config"

	"github.com/tonkeeper/tongo/ton"
)

const (
	tonProofPrefix   = "ton-proof-item-v2/"
	tonConnectPrefix = "ton-connect"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrDomainNotAllowed = errors.New("proof domain not allowed")
	ErrProofExpired     = errors.New("proof expired")
	ErrInvalidSignature = errors.New("invalid proof signature")
	ErrInvalidPublicKey = errors.New("invalid public key length")
)

type Proof struct {
	Address   string
	Domain    string
	Timestamp int64
	Payload   string
	Signature []byte
	PublicKey []byte
}

type Verifier struct {
	config *config.TonProof
	now    func() time.Time
}

func NewVerifier(tonProofConfig *config.TonProof) (self *Verifier) {
	self = &Verifier{
		config: tonProofConfig,
		now:    time.Now,
	}
	return
}

// Verify checks a freshly presented proof end to end: domain
// allowlist, freshness window and the ed25519 signature over the
// reconstructed message.
func (self *Verifier) Verify(proof *Proof) (err error) {
	issuedAt := time.Unix(proof.Timestamp, 0)
	if self.now().Sub(issuedAt) > self.config.ValidFor {
		return ErrProofExpired
	}

	return self.VerifyStored(proof)
}

// VerifyStored re-checks a proof recorded at connect time. The
// signature and the domain still have to hold, the freshness window
// does not, the proof was fresh when it was accepted.
func (self *Verifier) VerifyStored(proof *Proof) (err error) {
	if len(proof.PublicKey) != ed25519.PublicKeySize {
		return ErrInvalidPublicKey
	}

	if !self.isDomainAllowed(proof.Domain) {
		return ErrDomainNotAllowed
	}

	message, err := proofMessage(proof)
	if err != nil {
		return
	}

	if !ed25519.Verify(proof.PublicKey, message, proof.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

func (self *Verifier) isDomainAllowed(domain string) bool {
	for _, allowed := range self.config.AllowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

// proofMessage reconstructs the byte string the wallet signed:
// sha256(0xffff | "ton-connect" | sha256("ton-proof-item-v2/" |
// workchain | addrHash | domainLen | domain | timestamp | payload))
func proofMessage(proof *Proof) (message []byte, err error) {
	accountId, err := ton.ParseAccountID(proof.Address)
	if err != nil {
		return nil, ErrInvalidAddress
	}

	workchain := make([]byte, 4)
	binary.BigEndian.PutUint32(workchain, uint32(accountId.Workchain))

	domainLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(domainLen, uint32(len(proof.Domain)))

	timestamp := make([]byte, 8)
	binary.LittleEndian.PutUint64(timestamp, uint64(proof.Timestamp))

	inner := []byte(tonProofPrefix)
	inner = append(inner, workchain...)
	inner = append(inner, accountId.Address[:]...)
	inner = append(inner, domainLen...)
	inner = append(inner, []byte(proof.Domain)...)
	inner = append(inner, timestamp...)
	inner = append(inner, []byte(proof.Payload)...)

	innerHash := sha256.Sum256(inner)

	outer := []byte{0xff, 0xff}
	outer = append(outer, []byte(tonConnectPrefix)...)
	outer = append(outer, innerHash[:]...)

	outerHash := sha256.Sum256(outer)
	message = outerHash[:]
	return
}
