package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func rpcTestServer(t *testing.T, handler func(method string, params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
		}

		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestSendTransaction(t *testing.T) {
	var gotTx string
	var gotEncoding string
	server := rpcTestServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "sendTransaction" {
			t.Errorf("unexpected method %s", method)
		}
		json.Unmarshal(params[0], &gotTx)
		var cfg map[string]string
		json.Unmarshal(params[1], &cfg)
		gotEncoding = cfg["encoding"]
		return "5igSig", nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	sig, err := client.SendTransaction(context.Background(), "AQID")
	if err != nil {
		t.Fatalf("SendTransaction failed: %v", err)
	}
	if sig != "5igSig" {
		t.Errorf("unexpected signature %s", sig)
	}
	if gotTx != "AQID" || gotEncoding != "base64" {
		t.Errorf("unexpected params: tx=%q encoding=%q", gotTx, gotEncoding)
	}
}

func TestGetSignatureStatuses(t *testing.T) {
	server := rpcTestServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		if method != "getSignatureStatuses" {
			t.Errorf("unexpected method %s", method)
		}
		var cfg map[string]bool
		json.Unmarshal(params[1], &cfg)
		if !cfg["searchTransactionHistory"] {
			t.Error("expected searchTransactionHistory=true")
		}
		return map[string]any{
			"value": []any{
				map[string]any{
					"slot":               123,
					"confirmations":      5,
					"confirmationStatus": "confirmed",
					"err":                nil,
				},
				nil,
			},
		}, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	statuses, err := client.GetSignatureStatuses(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("GetSignatureStatuses failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0] == nil || statuses[0].Slot != 123 || statuses[0].ConfirmationStatus != CommitmentConfirmed {
		t.Errorf("unexpected first status: %+v", statuses[0])
	}
	if statuses[1] != nil {
		t.Errorf("unknown signature must map to nil, got %+v", statuses[1])
	}
}

func TestGetLatestBlockhash(t *testing.T) {
	server := rpcTestServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		return map[string]any{
			"value": map[string]any{
				"blockhash":            "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLrDuFFRaNLxW",
				"lastValidBlockHeight": 987,
			},
		}, nil
	})
	defer server.Close()

	client := NewHTTPClient(server.URL)
	bh, err := client.GetLatestBlockhash(context.Background(), CommitmentFinalized)
	if err != nil {
		t.Fatalf("GetLatestBlockhash failed: %v", err)
	}
	if bh.LastValidBlockHeight != 987 || bh.Blockhash == "" {
		t.Errorf("unexpected blockhash: %+v", bh)
	}
}

func TestRPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := rpcTestServer(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		calls.Add(1)
		return nil, &rpcError{Code: -32002, Message: "Transaction simulation failed"}
	})
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
	_, err := client.SendTransaction(context.Background(), "AQID")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("rpc error must not be retried, got %d calls", calls.Load())
	}
}

func TestTransportErrorRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": uint64(55)})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(2), WithRetryDelay(time.Millisecond))
	slot, err := client.GetSlot(context.Background())
	if err != nil {
		t.Fatalf("GetSlot failed: %v", err)
	}
	if slot != 55 {
		t.Errorf("unexpected slot %d", slot)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestNoRetriesByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	if _, err := client.GetSlot(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("default client must not retry, got %d calls", calls.Load())
	}
}
