package model

// TransferRequest represents request for POST /transfer
type TransferRequest struct {
	ToAddress string `json:"toAddress" binding:"required"`
	Amount    string `json:"amount" binding:"required"` // in ether, decimal string
}

// TransferResponse represents response for POST /transfer and GET /receipt
type TransferResponse struct {
	TxHash      string `json:"txHash"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	AmountWei   string `json:"amountWei,omitempty"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
	Status      string `json:"status"`
}
