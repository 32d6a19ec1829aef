package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMessages struct {
	mock.Mock
}

func (m *mockMessages) Create(ctx context.Context, req *larkIm.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkIm.CreateMessageResp, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*larkIm.CreateMessageResp)
	return resp, args.Error(1)
}

func okResponse(id string) *larkIm.CreateMessageResp {
	return &larkIm.CreateMessageResp{
		Data: &larkIm.CreateMessageRespData{MessageId: larkcore.StringPtr(id)},
	}
}

var event = MismatchEvent{
	ConversionID:  "c-1",
	SourceName:    "invoice.pdf",
	InvoiceNumber: "A-1001",
	Computed:      0,
	Extracted:     1234.5,
}

func TestLarkNotifier_NotifyMismatch(t *testing.T) {
	messages := new(mockMessages)
	n := newLarkNotifier(messages, LarkConfig{ReceiveID: "oc_123"}, zap.NewNop())

	messages.On("Create", mock.Anything, mock.MatchedBy(func(req *larkIm.CreateMessageReq) bool {
		body := req.Body
		if body == nil || *body.ReceiveId != "oc_123" || *body.MsgType != "text" {
			return false
		}
		var content map[string]string
		if err := json.Unmarshal([]byte(*body.Content), &content); err != nil {
			return false
		}
		return content["text"] == event.Text()
	})).Return(okResponse("om_1"), nil).Once()

	require.NoError(t, n.NotifyMismatch(context.Background(), event))
	messages.AssertExpectations(t)
	assert.Equal(t, ReceiveIDTypeChatID, n.receiveIDType)
}

func TestLarkNotifier_APIFailure(t *testing.T) {
	messages := new(mockMessages)
	n := newLarkNotifier(messages, LarkConfig{ReceiveIDType: ReceiveIDTypeEmail, ReceiveID: "ops@example.com"}, nil)

	failed := &larkIm.CreateMessageResp{CodeError: larkcore.CodeError{Code: 230001, Msg: "invalid receive_id"}}
	messages.On("Create", mock.Anything, mock.Anything).Return(failed, nil).Once()

	_, err := n.SendText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=230001")
}

func TestLarkNotifier_TransportError(t *testing.T) {
	messages := new(mockMessages)
	n := newLarkNotifier(messages, LarkConfig{ReceiveID: "oc_123"}, nil)

	boom := errors.New("connection refused")
	messages.On("Create", mock.Anything, mock.Anything).Return(nil, boom).Once()

	err := n.NotifyMismatch(context.Background(), event)
	assert.ErrorIs(t, err, boom)
}

func TestNewLarkNotifier_RequiresCredentials(t *testing.T) {
	_, err := NewLarkNotifier(LarkConfig{ReceiveID: "oc_1"}, nil)
	assert.Error(t, err)

	_, err = NewLarkNotifier(LarkConfig{AppID: "cli_a", AppSecret: "s"}, nil)
	assert.Error(t, err)

	n, err := NewLarkNotifier(LarkConfig{AppID: "cli_a", AppSecret: "s", ReceiveID: "oc_1"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, n)
}

func TestMismatchEvent_Text(t *testing.T) {
	text := event.Text()
	assert.Contains(t, text, "invoice.pdf")
	assert.Contains(t, text, "Computed: 0.00")
	assert.Contains(t, text, "Extracted: 1234.50")
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = NopNotifier{}
	assert.NoError(t, n.NotifyMismatch(context.Background(), event))
}
