package ton

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

const (
	rawAddress      = "0:83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f92a8"
	friendlyAddress = "EQCD39VS5jcptHL8vMjEXrzGaRcCVYto7HUn4bpAOg-SqFWg"
)

type AddressTestSuite struct {
	suite.Suite
}

func (s *AddressTestSuite) TestNormalizeFromFriendly() {
	raw, err := NormalizeAddress(friendlyAddress)
	s.NoError(err)
	s.Equal(rawAddress, raw)
}

func (s *AddressTestSuite) TestNormalizeIsIdempotent() {
	raw, err := NormalizeAddress(rawAddress)
	s.NoError(err)
	s.Equal(rawAddress, raw)
}

func (s *AddressTestSuite) TestFriendlyRoundTrip() {
	friendly, err := FriendlyAddress(rawAddress, false)
	s.NoError(err)
	s.Equal(friendlyAddress, friendly)

	raw, err := NormalizeAddress(friendly)
	s.NoError(err)
	s.Equal(rawAddress, raw)
}

func (s *AddressTestSuite) TestFriendlyTestnetDiffers() {
	mainnet, err := FriendlyAddress(rawAddress, false)
	s.NoError(err)
	testnet, err := FriendlyAddress(rawAddress, true)
	s.NoError(err)
	s.NotEqual(mainnet, testnet)
}

func (s *AddressTestSuite) TestIsValidAddress() {
	s.True(IsValidAddress(rawAddress))
	s.True(IsValidAddress(friendlyAddress))
	s.False(IsValidAddress(""))
	s.False(IsValidAddress("not-an-address"))
	s.False(IsValidAddress("0:1234"))
}

func TestAddressTestSuite(t *testing.T) {
	suite.Run(t, new(AddressTestSuite))
}
