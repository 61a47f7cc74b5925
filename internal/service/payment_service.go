package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"ai-shopping-be/internal/dto"
	"ai-shopping-be/internal/pkg/logger"
	"ai-shopping-be/pkg/events"
	pktNats "ai-shopping-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var ErrInvalidSignature = fmt.Errorf("invalid webhook signature")

type IPaymentService interface {
	Checkout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

// paymentService creates Midtrans Snap transactions for products the
// assistant recommended and processes the asynchronous status webhooks.
type paymentService struct {
	serverKey string
	isProd    bool
	clientURL string
	natsPub   *pktNats.Publisher
	sysLogger logger.ILogger
}

func NewPaymentService(serverKey string, isProd bool, clientURL string, natsPub *pktNats.Publisher, sysLogger logger.ILogger) IPaymentService {
	return &paymentService{
		serverKey: serverKey,
		isProd:    isProd,
		clientURL: clientURL,
		natsPub:   natsPub,
		sysLogger: sysLogger,
	}
}

func (s *paymentService) Checkout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	orderID := "SHOP-" + uuid.NewString()

	env := midtrans.Sandbox
	if s.isProd {
		env = midtrans.Production
	}

	var sClient snap.Client
	sClient.New(s.serverKey, env)

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: req.Amount,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    orderID,
				Name:  truncateItemName(req.ProductName),
				Price: req.Amount,
				Qty:   1,
			},
		},
		Callbacks: &snap.Callbacks{
			Finish: s.clientURL + "/checkout/finish",
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if req.CustomerName != "" || req.CustomerEmail != "" {
		snapReq.CustomerDetail = &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		}
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	s.publishOrderCreated(ctx, orderID, req)

	return &dto.CheckoutResponse{
		OrderID:         orderID,
		SnapToken:       snapResp.Token,
		SnapRedirectURL: snapResp.RedirectURL,
	}, nil
}

// HandleWebhook verifies the Midtrans notification signature and logs
// the status transition. Unverified notifications are rejected.
func (s *paymentService) HandleWebhook(_ context.Context, req *dto.MidtransWebhookRequest) error {
	expected := sha512.Sum512([]byte(req.OrderId + req.StatusCode + req.GrossAmount + s.serverKey))
	if req.SignatureKey != hex.EncodeToString(expected[:]) {
		s.sysLogger.Warn("PAYMENT", "Webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return ErrInvalidSignature
	}

	s.sysLogger.Info("PAYMENT", "Transaction status update", map[string]interface{}{
		"order_id":     req.OrderId,
		"status":       req.TransactionStatus,
		"fraud_status": req.FraudStatus,
		"payment_type": req.PaymentType,
	})
	return nil
}

func (s *paymentService) publishOrderCreated(ctx context.Context, orderID string, req *dto.CheckoutRequest) {
	if s.natsPub == nil {
		return
	}
	event := events.NewOrderCreatedEvent(orderID, req.SessionID, req.ProductURL, req.Amount)
	if err := s.natsPub.Publish(ctx, event); err != nil {
		s.sysLogger.Warn("PAYMENT", "Failed to publish order created event", map[string]interface{}{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}
}

// Midtrans caps item names at 50 characters. Product names are Korean,
// so the cut has to happen on rune boundaries.
func truncateItemName(name string) string {
	runes := []rune(name)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return name
}
