package ton

import (
	"context"
	"fmt"
	"net/http"

	"github.com/onton-events/settler/src/utils/build_info"
	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client talks to the TON HTTP gateway. Every chain interaction the
// settler performs goes through here: collection deploys, item mints,
// confirmation checks and jetton balance probes.
type Client struct {
	client  *resty.Client
	config  *config.Ton
	log     *logrus.Entry
	limiter *rate.Limiter
}

func NewClient(tonConfig *config.Ton) (self *Client) {
	self = new(Client)
	self.config = tonConfig
	self.log = logger.NewSublogger("ton-client")

	self.limiter = rate.NewLimiter(rate.Limit(tonConfig.Limit), tonConfig.Burst)

	self.client = resty.New().
		SetBaseURL(tonConfig.Url).
		SetTimeout(tonConfig.RequestTimeout).
		SetHeader("User-Agent", "onton/settler/"+build_info.Version).
		SetRetryCount(1).
		AddRetryAfterErrorCondition().
		OnBeforeRequest(self.onRateLimit).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.IsSuccess() {
				return nil
			}
			if resp.StatusCode() == http.StatusNotFound {
				return ErrNotFound
			}
			self.log.WithField("status", resp.StatusCode()).
				WithField("url", resp.Request.URL).
				WithField("resp", string(resp.Body())).
				Debug("Bad response")
			return fmt.Errorf("unexpected status: %s", resp.Status())
		})

	if tonConfig.ApiKey != "" {
		self.client.SetAuthToken(tonConfig.ApiKey)
	}

	return
}

// Blocks until the request fits the rate limit or ctx gets canceled
func (self *Client) onRateLimit(c *resty.Client, req *resty.Request) (err error) {
	return self.limiter.Wait(req.Context())
}

type Transaction struct {
	Hash    string `json:"hash"`
	Lt      int64  `json:"lt"`
	Success bool   `json:"success"`
	Aborted bool   `json:"aborted"`
}

// GetTransaction checks whether a previously sent message landed on
// chain. ErrNotFound means it has not been seen yet, not that it
// failed.
func (self *Client) GetTransaction(ctx context.Context, hash string) (out *Transaction, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(Transaction{}).
		ForceContentType("application/json").
		SetPathParam("hash", hash).
		Get("/blockchain/transactions/{hash}")
	if err != nil {
		return
	}

	out, ok := resp.Result().(*Transaction)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return
}

type jettonBalanceResponse struct {
	Balance       string `json:"balance"`
	WalletAddress struct {
		Address string `json:"address"`
	} `json:"wallet_address"`
}

// GetJettonBalance reads the owner's balance of the given jetton.
// Returns the raw balance in jetton units together with the derived
// jetton wallet address. Wallets that never held the jetton come back
// as a zero balance, not an error.
func (self *Client) GetJettonBalance(ctx context.Context, ownerAddress, jettonMasterAddress string) (balance string, jettonWallet string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(jettonBalanceResponse{}).
		ForceContentType("application/json").
		SetPathParam("account", ownerAddress).
		SetPathParam("jetton", jettonMasterAddress).
		Get("/accounts/{account}/jettons/{jetton}")
	if err == ErrNotFound {
		return "0", "", nil
	}
	if err != nil {
		return
	}

	out, ok := resp.Result().(*jettonBalanceResponse)
	if !ok {
		err = ErrFailedToParse
		return
	}

	balance = out.Balance
	jettonWallet = out.WalletAddress.Address
	return
}

type DeployCollectionRequest struct {
	MinterMnemonic string `json:"minter_mnemonic"`
	MetadataUrl    string `json:"metadata_url"`
	RoyaltyAddress string `json:"royalty_address,omitempty"`
	RoyaltyPercent int    `json:"royalty_percent,omitempty"`
}

type MintItemRequest struct {
	MinterMnemonic    string `json:"minter_mnemonic"`
	CollectionAddress string `json:"collection_address"`
	Index             int64  `json:"index"`
	OwnerAddress      string `json:"owner_address"`
	MetadataUrl       string `json:"metadata_url"`
}

type SendResult struct {
	Address string `json:"address"`
	TrxHash string `json:"trx_hash"`
}

// DeployCollection sends the collection deploy message and returns the
// derived collection address. The deploy is asynchronous; callers
// confirm it later with GetTransaction.
func (self *Client) DeployCollection(ctx context.Context, req *DeployCollectionRequest) (out *SendResult, err error) {
	return self.send(ctx, "/nft/collections", req)
}

// MintItem sends the item mint message for an already deployed
// collection.
func (self *Client) MintItem(ctx context.Context, req *MintItemRequest) (out *SendResult, err error) {
	return self.send(ctx, "/nft/items", req)
}

func (self *Client) send(ctx context.Context, endpoint string, body interface{}) (out *SendResult, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(SendResult{}).
		ForceContentType("application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return
	}

	out, ok := resp.Result().(*SendResult)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return
}
