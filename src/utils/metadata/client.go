package metadata

import (
	"context"
	"fmt"

	"github.com/onton-events/settler/src/utils/build_info"
	"github.com/onton-events/settler/src/utils/config"
	"github.com/onton-events/settler/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Client uploads NFT metadata documents to durable storage. The
// returned URL goes on chain, so uploads happen before any mint
// message is sent.
type Client struct {
	client *resty.Client
	config *config.Metadata
	log    *logrus.Entry
}

func NewClient(metadataConfig *config.Metadata) (self *Client) {
	self = new(Client)
	self.config = metadataConfig
	self.log = logger.NewSublogger("metadata-client")

	self.client = resty.New().
		SetBaseURL(metadataConfig.Url).
		SetTimeout(metadataConfig.RequestTimeout).
		SetHeader("User-Agent", "onton/settler/"+build_info.Version).
		SetRetryCount(2).
		AddRetryAfterErrorCondition()

	if metadataConfig.AccessKey != "" {
		self.client.
			SetHeader("X-Access-Key", metadataConfig.AccessKey).
			SetHeader("X-Secret-Key", metadataConfig.SecretKey)
	}

	return
}

type uploadResponse struct {
	Url string `json:"url"`
}

// UploadJSON stores the document under the given bucket and object
// name and returns its durable URL.
func (self *Client) UploadJSON(ctx context.Context, bucket, name string, document interface{}) (url string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(uploadResponse{}).
		ForceContentType("application/json").
		SetPathParam("bucket", bucket).
		SetPathParam("name", name).
		SetBody(document).
		Put("/buckets/{bucket}/objects/{name}")
	if err != nil {
		return
	}

	if !resp.IsSuccess() {
		self.log.WithField("statusCode", resp.StatusCode()).
			WithField("bucket", bucket).
			WithField("name", name).
			Warn("Metadata upload has not been successful")
		err = fmt.Errorf("metadata upload failed: %s", resp.Status())
		return
	}

	out, ok := resp.Result().(*uploadResponse)
	if !ok || out.Url == "" {
		err = fmt.Errorf("failed to parse metadata upload response")
		return
	}

	url = out.Url
	return
}
