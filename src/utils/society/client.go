package society

import (
	"context"
	"errors"
	"fmt"

	"github.com/onton-events/settler/src/utils/build_info"
	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var ErrFailedToParse = errors.New("failed to parse response")

// Client wraps the society platform API. Tickets for society-backed
// events are minted as CSBTs by the platform itself; the settler only
// requests the mint and mirrors reward claims back into its own
// tables.
type Client struct {
	client *resty.Client
	config *config.Society
	log    *logrus.Entry
}

func NewClient(societyConfig *config.Society) (self *Client) {
	self = new(Client)
	self.config = societyConfig
	self.log = logger.NewSublogger("society-client")

	self.client = resty.New().
		SetBaseURL(societyConfig.Url).
		SetTimeout(societyConfig.RequestTimeout).
		SetHeader("User-Agent", "onton/settler/"+build_info.Version).
		SetAuthToken(societyConfig.ApiToken).
		SetRetryCount(1).
		AddRetryAfterErrorCondition()

	return
}

type MintTicketRequest struct {
	ActivityId   string `json:"activity_id"`
	OwnerAddress string `json:"owner_address"`
	TelegramId   int64  `json:"telegram_id"`
}

type MintTicketResponse struct {
	NftAddress string `json:"nft_address"`
	Status     string `json:"status"`
}

// MintTicket asks the platform to mint a CSBT ticket for the given
// activity. The call is synchronous on the API side but the mint
// itself settles on chain later.
func (self *Client) MintTicket(ctx context.Context, req *MintTicketRequest) (out *MintTicketResponse, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(MintTicketResponse{}).
		ForceContentType("application/json").
		SetBody(req).
		Post("/v1/csbt/mint")
	if err != nil {
		return
	}

	if !resp.IsSuccess() {
		self.log.WithField("statusCode", resp.StatusCode()).
			WithField("activityId", req.ActivityId).
			Warn("CSBT mint request has not been successful")
		err = fmt.Errorf("csbt mint failed: %s", resp.Status())
		return
	}

	out, ok := resp.Result().(*MintTicketResponse)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return
}

type RewardStatus struct {
	VisitorId int64  `json:"visitor_id"`
	Status    string `json:"status"`
	Claimed   bool   `json:"claimed"`
}

type RewardsPage struct {
	Items []RewardStatus `json:"items"`
	Total int            `json:"total"`
}

// GetRewards pages through the claim states of participation rewards
// for one activity.
func (self *Client) GetRewards(ctx context.Context, activityId string, offset, limit int) (out *RewardsPage, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(RewardsPage{}).
		ForceContentType("application/json").
		SetPathParam("activityId", activityId).
		SetQueryParams(map[string]string{
			"offset": fmt.Sprintf("%d", offset),
			"limit":  fmt.Sprintf("%d", limit),
		}).
		Get("/v1/activities/{activityId}/rewards")
	if err != nil {
		return
	}

	if !resp.IsSuccess() {
		err = fmt.Errorf("rewards request failed: %s", resp.Status())
		return
	}

	out, ok := resp.Result().(*RewardsPage)
	if !ok {
		err = ErrFailedToParse
		return
	}
	return
}
