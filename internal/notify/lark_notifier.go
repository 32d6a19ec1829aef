package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Receiver ID types accepted by the Lark IM API.
const (
	ReceiveIDTypeChatID = "chat_id"
	ReceiveIDTypeOpenID = "open_id"
	ReceiveIDTypeEmail  = "email"
)

// LarkConfig holds Lark notifier configuration
type LarkConfig struct {
	AppID         string
	AppSecret     string
	ReceiveIDType string
	ReceiveID     string
}

// messageCreator is the part of the Lark IM client used to send messages.
type messageCreator interface {
	Create(ctx context.Context, req *larkIm.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkIm.CreateMessageResp, error)
}

// LarkNotifier posts text messages to a Lark chat or user.
type LarkNotifier struct {
	messages      messageCreator
	receiveIDType string
	receiveID     string
	logger        *zap.Logger
}

// NewLarkNotifier creates a notifier backed by the Lark SDK client.
func NewLarkNotifier(cfg LarkConfig, logger *zap.Logger) (*LarkNotifier, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, fmt.Errorf("lark app_id and app_secret are required")
	}
	if cfg.ReceiveID == "" {
		return nil, fmt.Errorf("lark receive_id is required")
	}

	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
	return newLarkNotifier(client.Im.Message, cfg, logger), nil
}

func newLarkNotifier(messages messageCreator, cfg LarkConfig, logger *zap.Logger) *LarkNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	receiveIDType := cfg.ReceiveIDType
	if receiveIDType == "" {
		receiveIDType = ReceiveIDTypeChatID
	}
	return &LarkNotifier{
		messages:      messages,
		receiveIDType: receiveIDType,
		receiveID:     cfg.ReceiveID,
		logger:        logger,
	}
}

// NotifyMismatch sends the event as a text message.
func (n *LarkNotifier) NotifyMismatch(ctx context.Context, event MismatchEvent) error {
	_, err := n.SendText(ctx, event.Text())
	return err
}

// SendText sends a plain text message and returns the Lark message ID.
func (n *LarkNotifier) SendText(ctx context.Context, text string) (string, error) {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType(n.receiveIDType).
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.receiveID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.messages.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send message",
			zap.String("receive_id", n.receiveID),
			zap.Error(err))
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("API returned failure",
			zap.String("receive_id", n.receiveID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	n.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("receive_id", n.receiveID))

	return messageID, nil
}
