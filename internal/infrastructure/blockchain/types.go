package blockchain

type balance struct {
	FinalBalance  int64 `json:"final_balance"`
	TxCount       int   `json:"n_tx"`
	TotalReceived int64 `json:"total_received"`
}

func (b balance) GetFinalBalance() int64 {
	return b.FinalBalance
}

func (b balance) GetTxCount() int {
	return b.TxCount
}

func (b balance) GetTotalReceived() int64 {
	return b.TotalReceived
}

type unspentResponse struct {
	UnspentOutputs []unspent `json:"unspent_outputs"`
}

type xpubInfo struct {
	M    string `json:"m"`
	Path string `json:"path"`
}

type unspent struct {
	TxHash        string    `json:"tx_hash_big_endian"`
	Index         uint32    `json:"tx_output_n"`
	Script        string    `json:"script"`
	Value         int64     `json:"value"`
	Confirmations int       `json:"confirmations"`
	XPub          *xpubInfo `json:"xpub,omitempty"`
	Address       string    `json:"-"`
}

func (u unspent) GetTxHash() string {
	return u.TxHash
}

func (u unspent) GetIndex() uint32 {
	return u.Index
}

func (u unspent) GetValue() int64 {
	return u.Value
}

func (u unspent) GetAddress() string {
	return u.Address
}

func (u unspent) GetConfirmations() int {
	return u.Confirmations
}

func (u unspent) GetXPub() string {
	if u.XPub == nil {
		return ""
	}
	return u.XPub.M
}

func (u unspent) GetPath() string {
	if u.XPub == nil {
		return ""
	}
	return u.XPub.Path
}
