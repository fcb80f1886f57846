package blockchain

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/btcsuite/btcd/txscript"
	"github.com/tdex-network/tdex-payload/internal/core/ports"
	"github.com/tdex-network/tdex-payload/pkg/wallet"
)

const (
	// DefaultAPIURL is the base url of the public blockchain.info api
	DefaultAPIURL = "https://blockchain.info"
	// DefaultRequestTimeout ...
	DefaultRequestTimeout = 15 * time.Second

	// identifiers are joined in a single query param
	identifierSeparator = "|"
)

type service struct {
	apiURL string
	client *http.Client
}

// NewService returns a ports.BalanceService querying the blockchain.info
// compatible api at apiURL. Both addresses and xpubs are accepted as
// identifiers
func NewService(apiURL string, requestTimeout time.Duration) ports.BalanceService {
	if len(apiURL) <= 0 {
		apiURL = DefaultAPIURL
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &service{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (s *service) GetBalance(
	ctx context.Context, identifiers []string,
) (map[string]ports.Balance, error) {
	if len(identifiers) <= 0 {
		return map[string]ports.Balance{}, nil
	}

	var resp map[string]balance
	if err := s.get(ctx, "balance", identifiers, &resp); err != nil {
		return nil, fmt.Errorf("error on retrieving balances: %w", err)
	}

	balances := make(map[string]ports.Balance, len(resp))
	for id, b := range resp {
		balances[id] = b
	}
	return balances, nil
}

func (s *service) GetUnspentOutputs(
	ctx context.Context, addresses []string,
) ([]ports.Unspent, error) {
	if len(addresses) <= 0 {
		return nil, nil
	}

	var resp unspentResponse
	if err := s.get(ctx, "unspent", addresses, &resp); err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %w", err)
	}

	unspents := make([]ports.Unspent, 0, len(resp.UnspentOutputs))
	for _, u := range resp.UnspentOutputs {
		addr, err := addressFromScript(u.Script)
		if err != nil {
			return nil, fmt.Errorf("error on parsing utxo script: %w", err)
		}
		u.Address = addr
		unspents = append(unspents, u)
	}
	return unspents, nil
}

func (s *service) get(
	ctx context.Context, endpoint string, identifiers []string, out interface{},
) error {
	query := url.Values{}
	query.Set("active", strings.Join(identifiers, identifierSeparator))
	reqURL := fmt.Sprintf("%s/%s?%s", s.apiURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	rs, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		return err
	}
	if rs.StatusCode != http.StatusOK {
		return fmt.Errorf("%d: %s", rs.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, out)
}

func addressFromScript(script string) (string, error) {
	buf, err := hex.DecodeString(script)
	if err != nil {
		return "", err
	}
	_, addresses, _, err := txscript.ExtractPkScriptAddrs(buf, wallet.NetParams)
	if err != nil {
		return "", err
	}
	if len(addresses) <= 0 {
		return "", nil
	}
	return addresses[0].EncodeAddress(), nil
}
