package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"
)

// Gateway pushes withdrawn value out to the account's address. The call is
// synchronous: an error means no value moved on the other side.
type Gateway interface {
	Send(ctx context.Context, address entity.Address, amount int64) error
}

// HTTPGateway delivers payout orders to an external transfer service.
type HTTPGateway struct {
	url    string
	client *http.Client
}

func NewHTTPGateway(url string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type payoutOrder struct {
	Address entity.Address `json:"address"`
	Amount  int64          `json:"amount"`
}

func (g *HTTPGateway) Send(ctx context.Context, address entity.Address, amount int64) error {
	payload, err := json.Marshal(payoutOrder{Address: address, Amount: amount})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach the transfer service: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("transfer service refused the payout with status %d", resp.StatusCode)
	}
	return nil
}

// NopGateway accepts every payout. Used for local runs without a transfer
// service behind the bank.
type NopGateway struct{}

func (NopGateway) Send(context.Context, entity.Address, int64) error { return nil }
