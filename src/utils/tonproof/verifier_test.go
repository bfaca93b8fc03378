package tonproof

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/onton-events/settler/src/utils/config"

	"github.com/stretchr/testify/suite"
)

const walletAddress = "0:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f92a8"

type VerifierTestSuite struct {
	suite.Suite

	verifier *Verifier
	public   ed25519.PublicKey
	private  ed25519.PrivateKey
}

func (s *VerifierTestSuite) SetupTest() {
	var err error
	s.public, s.private, err = ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)

	s.verifier = NewVerifier(&config.TonProof{
		AllowedDomains: []string{"onton.live"},
		ValidFor:       15 * time.Minute,
	})
}

func (s *VerifierTestSuite) signedProof(domain string, issuedAt time.Time) *Proof {
	proof := &Proof{
		Address:   walletAddress,
		Domain:    domain,
		Timestamp: issuedAt.Unix(),
		Payload:   "challenge-123",
		PublicKey: s.public,
	}

	message, err := proofMessage(proof)
	s.Require().NoError(err)

	proof.Signature = ed25519.Sign(s.private, message)
	return proof
}

func (s *VerifierTestSuite) TestValidProof() {
	proof := s.signedProof("onton.live", time.Now())
	s.NoError(s.verifier.Verify(proof))
}

func (s *VerifierTestSuite) TestRejectsUnknownDomain() {
	proof := s.signedProof("evil.example", time.Now())
	s.ErrorIs(s.verifier.Verify(proof), ErrDomainNotAllowed)
}

func (s *VerifierTestSuite) TestStoredProofOutlivesFreshnessWindow() {
	proof := s.signedProof("onton.live", time.Now().Add(-30*24*time.Hour))
	s.ErrorIs(s.verifier.Verify(proof), ErrProofExpired)
	s.NoError(s.verifier.VerifyStored(proof))
}

func (s *VerifierTestSuite) TestRejectsExpiredProof() {
	proof := s.signedProof("onton.live", time.Now().Add(-time.Hour))
	s.ErrorIs(s.verifier.Verify(proof), ErrProofExpired)
}

func (s *VerifierTestSuite) TestRejectsTamperedPayload() {
	proof := s.signedProof("onton.live", time.Now())
	proof.Payload = "challenge-456"
	s.ErrorIs(s.verifier.Verify(proof), ErrInvalidSignature)
}

func (s *VerifierTestSuite) TestRejectsForeignKey() {
	proof := s.signedProof("onton.live", time.Now())

	otherPublic, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	proof.PublicKey = otherPublic

	s.ErrorIs(s.verifier.Verify(proof), ErrInvalidSignature)
}

func (s *VerifierTestSuite) TestRejectsShortKey() {
	proof := s.signedProof("onton.live", time.Now())
	proof.PublicKey = proof.PublicKey[:16]
	s.ErrorIs(s.verifier.Verify(proof), ErrInvalidPublicKey)
}

func (s *VerifierTestSuite) TestRejectsBadAddress() {
	proof := s.signedProof("onton.live", time.Now())
	proof.Address = "not-an-address"
	s.ErrorIs(s.verifier.Verify(proof), ErrInvalidAddress)
}

func TestVerifierTestSuite(t *testing.T) {
	suite.Run(t, new(VerifierTestSuite))
}
