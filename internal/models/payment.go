package models

// PayPalOrder — заказ, созданный бэкендом; ApproveURL отдаётся пользователю.
type PayPalOrder struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status,omitempty"`
	ApproveURL string `json:"approve_url,omitempty"`
}

// CoinbaseCharge — платёж Coinbase Commerce; HostedURL ведёт на checkout.
type CoinbaseCharge struct {
	ChargeID  string `json:"charge_id"`
	Code      string `json:"code,omitempty"`
	HostedURL string `json:"hosted_url"`
}
