package gateway_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railguard/internal/gateway"
	dErrors "railguard/pkg/domain-errors"
)

func newHorizonGateway(t *testing.T, handler http.Handler, timeout time.Duration) *gateway.HorizonGateway {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := &horizonclient.Client{HorizonURL: server.URL, HTTP: server.Client()}
	return gateway.NewHorizonGateway(client, 10*time.Millisecond, timeout)
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `{"type":"https://stellar.org/horizon-errors/not_found","title":"Resource Missing","status":404}`)
}

func TestSubmit(t *testing.T) {
	gw := newHorizonGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `{"hash":"abc123","successful":true}`)
	}), time.Second)

	submission, err := gw.Submit(context.Background(), "signed-xdr")
	require.NoError(t, err)
	assert.Equal(t, "abc123", submission.Hash)
	assert.Equal(t, gateway.StatusSubmitted, submission.Status)
}

func TestSubmitFailure(t *testing.T) {
	gw := newHorizonGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type":"https://stellar.org/horizon-errors/transaction_failed","title":"Transaction Failed","status":400}`)
	}), time.Second)

	_, err := gw.Submit(context.Background(), "signed-xdr")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeGatewayFailure))
}

func TestAwaitConfirmation(t *testing.T) {
	t.Run("confirms once the transaction appears", func(t *testing.T) {
		var calls atomic.Int32
		gw := newHorizonGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				writeNotFound(w)
				return
			}
			fmt.Fprint(w, `{"hash":"abc123","successful":true}`)
		}), time.Second)

		status, err := gw.AwaitConfirmation(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, gateway.StatusConfirmed, status)
	})

	t.Run("reports failure for an unsuccessful transaction", func(t *testing.T) {
		gw := newHorizonGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"hash":"abc123","successful":false}`)
		}), time.Second)

		status, err := gw.AwaitConfirmation(context.Background(), "abc123")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeGatewayFailure))
		assert.Equal(t, gateway.StatusFailed, status)
	})

	t.Run("reports unconfirmed after the timeout", func(t *testing.T) {
		gw := newHorizonGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeNotFound(w)
		}), 50*time.Millisecond)

		status, err := gw.AwaitConfirmation(context.Background(), "abc123")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnconfirmed))
		assert.Equal(t, gateway.StatusSubmitted, status)
	})

	t.Run("reports unconfirmed on context cancellation", func(t *testing.T) {
		gw := newHorizonGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeNotFound(w)
		}), time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := gw.AwaitConfirmation(ctx, "abc123")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnconfirmed))
	})
}
