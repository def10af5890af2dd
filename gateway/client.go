// Package gateway implements the HTTP client (C7) this upload client
// speaks to the network gateway over: price lookups, anchor fetch,
// transaction/chunk POST with retry, and status GET, per spec §6.
package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/liteseed/arloader/transaction"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
)

// ChunkRetries is the maximum number of attempts for a chunk or
// transaction POST before giving up, per §4.C7/§6.
const ChunkRetries = 10

// RetrySleep is the fixed delay between POST retry attempts.
const RetrySleep = time.Second

// Client is a gateway HTTP client: typed calls to the seven endpoints
// §6 names, with retry baked into the POST paths that need it.
type Client struct {
	cli *gentleman.Client
	log log15.Logger
}

// New constructs a Client against baseURL (e.g. "https://arweave.net").
func New(baseURL string) *Client {
	cli := gentleman.New()
	cli.URL(baseURL)
	return &Client{
		cli: cli,
		log: log15.New("component", "gateway"),
	}
}

// Price returns the winston price to store size bytes.
func (c *Client) Price(size int64) (int64, error) {
	res, err := c.cli.Request().Method("GET").Path(fmt.Sprintf("/price/%d", size)).Send()
	if err != nil {
		return 0, fmt.Errorf("gateway: price request: %w", err)
	}
	if !res.Ok {
		return 0, fmt.Errorf("%w: price returned %d", ErrGateway, res.StatusCode)
	}
	price := gjson.ParseBytes(res.Bytes())
	if !price.Exists() {
		return 0, fmt.Errorf("%w: price body was not a number", ErrDecode)
	}
	return price.Int(), nil
}

// Anchor returns a recent transaction id to use as a new transaction's
// last_tx field.
func (c *Client) Anchor() (string, error) {
	res, err := c.cli.Request().Method("GET").Path("/tx_anchor").Send()
	if err != nil {
		return "", fmt.Errorf("gateway: anchor request: %w", err)
	}
	if !res.Ok {
		return "", fmt.Errorf("%w: tx_anchor returned %d", ErrGateway, res.StatusCode)
	}
	return string(res.Bytes()), nil
}

// Status fetches a transaction's confirmation status. It distinguishes
// three outcomes as data, not exceptions: a confirmed TxStatus, ErrPending
// (body was the literal text "Pending"), and ErrNotFound (404). Status GET
// is a single attempt; no retry per §4.C7.
func (c *Client) Status(id string) (*TxStatus, error) {
	res, err := c.cli.Request().Method("GET").Path(fmt.Sprintf("/tx/%s/status", id)).Send()
	if err != nil {
		return nil, fmt.Errorf("gateway: status request: %w", err)
	}

	if res.StatusCode == 404 {
		return nil, ErrNotFound
	}
	body := res.Bytes()
	if string(body) == "Pending" {
		return nil, ErrPending
	}
	if !res.Ok {
		return nil, fmt.Errorf("%w: status returned %d", ErrGateway, res.StatusCode)
	}

	var status TxStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &status, nil
}

// PendingTransactions returns the ids the gateway currently considers
// pending, for operator queries.
func (c *Client) PendingTransactions() ([]string, error) {
	res, err := c.cli.Request().Method("GET").Path("/tx/pending").Send()
	if err != nil {
		return nil, fmt.Errorf("gateway: pending request: %w", err)
	}
	if !res.Ok {
		return nil, fmt.Errorf("%w: tx/pending returned %d", ErrGateway, res.StatusCode)
	}

	var ids []string
	if err := json.Unmarshal(res.Bytes(), &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return ids, nil
}

// WalletBalance returns a wallet's confirmed balance in winston.
func (c *Client) WalletBalance(address string) (int64, error) {
	res, err := c.cli.Request().Method("GET").Path(fmt.Sprintf("/wallet/%s/balance", address)).Send()
	if err != nil {
		return 0, fmt.Errorf("gateway: wallet balance request: %w", err)
	}
	if !res.Ok {
		return 0, fmt.Errorf("%w: wallet balance returned %d", ErrGateway, res.StatusCode)
	}
	return gjson.ParseBytes(res.Bytes()).Int(), nil
}

// PostTransaction submits a signed transaction, retrying up to
// ChunkRetries times with RetrySleep between attempts on any non-2xx.
func (c *Client) PostTransaction(tx *transaction.Transaction) error {
	body, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("gateway: marshal transaction: %w", err)
	}
	return c.postWithRetry("/tx", body)
}

// PostChunk submits one chunk body, retrying up to ChunkRetries times
// with RetrySleep between attempts on any non-2xx. The chunk body is
// re-sent unchanged on each retry.
func (c *Client) PostChunk(chunk *transaction.ChunkBody) error {
	body, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("gateway: marshal chunk: %w", err)
	}
	return c.postWithRetry("/chunk", body)
}

func (c *Client) postWithRetry(path string, body []byte) error {
	var lastErr error
	for attempt := 1; attempt <= ChunkRetries; attempt++ {
		res, err := c.cli.Request().Method("POST").Path(path).JSON(json.RawMessage(body)).Send()
		if err == nil && res.Ok {
			return nil
		}

		if err != nil {
			lastErr = fmt.Errorf("gateway: post %s: %w", path, err)
		} else {
			lastErr = fmt.Errorf("%w: post %s returned %d", ErrGateway, path, res.StatusCode)
		}

		c.log.Warn("post attempt failed", "path", path, "attempt", attempt, "err", lastErr)
		if attempt < ChunkRetries {
			time.Sleep(RetrySleep)
		}
	}
	return lastErr
}
