package dto

type CheckoutRequest struct {
	SessionID     string `json:"session_id" validate:"required"`
	ProductURL    string `json:"product_url" validate:"required,url"`
	ProductName   string `json:"product_name" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

type CheckoutResponse struct {
	OrderID         string `json:"order_id"`
	SnapToken       string `json:"snap_token"`
	SnapRedirectURL string `json:"snap_redirect_url"`
}

type MidtransWebhookRequest struct {
	OrderId           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}
