package slack

import (
	"fmt"

	"github.com/slack-go/slack"
)

// Messenger posts replies to a channel.
type Messenger interface {
	SendMessage(channelID, message string) error
	SendMessageAndGetTS(channelID, message string) (string, error)
}

type Client struct {
	api   *slack.Client
	botID string
}

func NewClient(token string) (*Client, error) {
	api := slack.New(token)

	authTest, err := api.AuthTest()
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with Slack: %w", err)
	}

	return &Client{
		api:   api,
		botID: authTest.UserID,
	}, nil
}

func (c *Client) GetBotID() string {
	return c.botID
}

func (c *Client) SendMessage(channelID, message string) error {
	_, err := c.SendMessageAndGetTS(channelID, message)
	return err
}

// SendMessageAndGetTS returns the message timestamp so reactions can be matched to it later.
func (c *Client) SendMessageAndGetTS(channelID, message string) (string, error) {
	_, timestamp, err := c.api.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
	)
	return timestamp, err
}
